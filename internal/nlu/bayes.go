package nlu

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/teller/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultCorpus []byte

// Defaults of the statistical strategy.
const (
	DefaultThreshold   = 0.3
	DefaultSmoothing   = 0.1
	DefaultMaxFeatures = 1000
)

// Example is one labelled training phrase.
type Example struct {
	Intent domain.Intent
	Text   string
}

// LoadCorpus parses a YAML training corpus.
func LoadCorpus(data []byte) ([]Example, error) {
	var doc struct {
		Intents []struct {
			Intent   domain.Intent `yaml:"intent"`
			Examples []string      `yaml:"examples"`
		} `yaml:"intents"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse training corpus: %w", err)
	}
	var out []Example
	for _, group := range doc.Intents {
		if !group.Intent.Valid() {
			return nil, fmt.Errorf("corpus: unknown intent %q", group.Intent)
		}
		for _, text := range group.Examples {
			out = append(out, Example{Intent: group.Intent, Text: text})
		}
	}
	return out, nil
}

type bayesConfig struct {
	threshold   float64
	smoothing   float64
	maxFeatures int
}

// BayesOption configures the statistical strategy.
type BayesOption func(*bayesConfig)

// WithThreshold sets the posterior below which the result is forced to unknown.
func WithThreshold(t float64) BayesOption {
	return func(c *bayesConfig) {
		c.threshold = t
	}
}

// WithSmoothing sets the additive (Lidstone) smoothing of feature likelihoods.
func WithSmoothing(alpha float64) BayesOption {
	return func(c *bayesConfig) {
		c.smoothing = alpha
	}
}

// WithMaxFeatures caps the vocabulary to the most frequent n-grams.
func WithMaxFeatures(n int) BayesOption {
	return func(c *bayesConfig) {
		c.maxFeatures = n
	}
}

// NaiveBayes classifies with TF-IDF weighted unigrams and bigrams fed to a
// multinomial Naive Bayes model. It is immutable once trained.
type NaiveBayes struct {
	vocab     map[string]int
	idf       []float64
	classes   []domain.Intent
	logPrior  []float64
	logLike   [][]float64
	threshold float64
}

// NewNaiveBayes trains on the built-in corpus.
func NewNaiveBayes(opts ...BayesOption) (*NaiveBayes, error) {
	examples, err := LoadCorpus(defaultCorpus)
	if err != nil {
		return nil, err
	}
	return TrainNaiveBayes(examples, opts...)
}

// TrainNaiveBayes fits the vectorizer and the model on examples.
func TrainNaiveBayes(examples []Example, opts ...BayesOption) (*NaiveBayes, error) {
	cfg := bayesConfig{
		threshold:   DefaultThreshold,
		smoothing:   DefaultSmoothing,
		maxFeatures: DefaultMaxFeatures,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(examples) == 0 {
		return nil, errors.New("no training examples")
	}
	if cfg.smoothing <= 0 {
		return nil, fmt.Errorf("smoothing must be positive, got %v", cfg.smoothing)
	}

	docs := make([][]string, len(examples))
	for i, ex := range examples {
		docs[i] = ngrams(preprocess(ex.Text))
	}

	nb := &NaiveBayes{threshold: cfg.threshold}
	nb.fitVocabulary(docs, cfg.maxFeatures)

	classIndex := make(map[domain.Intent]int)
	for _, ex := range examples {
		if _, ok := classIndex[ex.Intent]; !ok {
			classIndex[ex.Intent] = len(nb.classes)
			nb.classes = append(nb.classes, ex.Intent)
		}
	}

	k, v := len(nb.classes), len(nb.vocab)
	counts := make([]float64, k)
	features := make([][]float64, k)
	for c := range features {
		features[c] = make([]float64, v)
	}
	for i, ex := range examples {
		c := classIndex[ex.Intent]
		counts[c]++
		for j, w := range nb.vectorize(docs[i]) {
			features[c][j] += w
		}
	}

	nb.logPrior = make([]float64, k)
	nb.logLike = make([][]float64, k)
	for c := 0; c < k; c++ {
		nb.logPrior[c] = math.Log(counts[c] / float64(len(examples)))
		var total float64
		for _, f := range features[c] {
			total += f
		}
		denom := total + cfg.smoothing*float64(v)
		nb.logLike[c] = make([]float64, v)
		for j, f := range features[c] {
			nb.logLike[c][j] = math.Log((f + cfg.smoothing) / denom)
		}
	}
	return nb, nil
}

// fitVocabulary keeps the maxFeatures most frequent terms and computes a
// smoothed idf: ln((1+N)/(1+df)) + 1.
func (nb *NaiveBayes) fitVocabulary(docs [][]string, maxFeatures int) {
	freq := make(map[string]int)
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range doc {
			freq[term]++
			if !seen[term] {
				df[term]++
				seen[term] = true
			}
		}
	}

	terms := make([]string, 0, len(freq))
	for term := range freq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	nb.vocab = make(map[string]int, len(terms))
	nb.idf = make([]float64, len(terms))
	for i, term := range terms {
		nb.vocab[term] = i
		nb.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
}

// vectorize returns the l2-normalized tf-idf weights of the known terms.
func (nb *NaiveBayes) vectorize(terms []string) map[int]float64 {
	vec := make(map[int]float64)
	for _, term := range terms {
		if j, ok := nb.vocab[term]; ok {
			vec[j]++
		}
	}
	var norm float64
	for j, tf := range vec {
		vec[j] = tf * nb.idf[j]
		norm += vec[j] * vec[j]
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for j := range vec {
		vec[j] /= norm
	}
	return vec
}

// Posteriors returns the class probabilities for text.
func (nb *NaiveBayes) Posteriors(text string) map[domain.Intent]float64 {
	vec := nb.vectorize(ngrams(preprocess(text)))

	jll := make([]float64, len(nb.classes))
	maxJLL := math.Inf(-1)
	for c := range nb.classes {
		jll[c] = nb.logPrior[c]
		for j, w := range vec {
			jll[c] += w * nb.logLike[c][j]
		}
		maxJLL = math.Max(maxJLL, jll[c])
	}

	var sum float64
	for c := range jll {
		jll[c] = math.Exp(jll[c] - maxJLL)
		sum += jll[c]
	}
	out := make(map[domain.Intent]float64, len(nb.classes))
	for c, intent := range nb.classes {
		out[intent] = jll[c] / sum
	}
	return out
}

// Classify returns the most probable intent, or unknown when its posterior is
// below the threshold.
func (nb *NaiveBayes) Classify(text string) domain.Classification {
	if len(preprocess(text)) == 0 {
		return domain.Classification{Intent: domain.IntentUnknown}
	}

	posteriors := nb.Posteriors(text)
	best := domain.Classification{Intent: domain.IntentUnknown}
	for _, intent := range nb.classes {
		if p := posteriors[intent]; p > best.Confidence {
			best = domain.Classification{Intent: intent, Confidence: p}
		}
	}
	if best.Confidence < nb.threshold {
		best.Intent = domain.IntentUnknown
	}
	return best
}

// preprocess folds text, drops punctuation, stopwords and tokens of two runes or fewer.
func preprocess(text string) []string {
	var out []string
	for _, tok := range Tokens(text) {
		if frenchStopwords[tok] || utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// ngrams returns unigrams followed by bigrams.
func ngrams(tokens []string) []string {
	out := append([]string(nil), tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+2], " "))
	}
	return out
}
