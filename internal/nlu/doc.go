/*
Package nlu implements the language understanding side of the dialogue engine.

It provides the pattern-based Extractor and two interchangeable intent
classification strategies: RuleClassifier (ordered keyword rules) and NaiveBayes
(TF-IDF features fed to a multinomial Naive Bayes model trained at construction).
Both operate on French text folded to lowercase without diacritics.

Extraction and rule matching follow a first-match policy: a message mentioning two
amounts yields the first one, and the first matching rule wins.
*/
package nlu
