package domain

// FAQEntry is one frequently asked question with its canned answer.
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AvailableActions are the intents advertised to chat front-ends.
var AvailableActions = []Intent{
	IntentBalance,
	IntentTransactions,
	IntentTransfer,
	IntentDeposit,
	IntentWithdrawal,
	IntentLoanSimulate,
	IntentLoanApply,
	IntentAssistance,
}

var (
	authenticatedSuggestions = []string{
		"Quel est le solde de mon compte courant ?",
		"Affiche mes dernières transactions",
		"Effectue un virement de 1000 TND à Ahmed Ben Salah",
		"Simule un crédit de 50000 TND sur 7 ans",
		"Quels sont vos taux de crédit ?",
		"Aide",
	}
	anonymousSuggestions = []string{
		"Bonjour",
		"Aide",
		"Quels sont vos taux de crédit ?",
		"Comment faire un virement ?",
		"Quels documents pour un crédit ?",
	}
)

// Suggestions returns example prompts for the chat input.
func Suggestions(authenticated bool) []string {
	src := anonymousSuggestions
	if authenticated {
		src = authenticatedSuggestions
	}
	return append([]string(nil), src...)
}

// FAQ returns the frequently asked questions.
func FAQ() []FAQEntry {
	return []FAQEntry{
		{
			Question: "Quels sont vos taux de crédit en dinars ?",
			Answer:   "Nos taux de crédit varient selon le type :\n• Crédit Personnel : 6.5% à 8.5%\n• Crédit Immobilier : 5.0% à 7.0%\n• Crédit Auto : 6.0% à 8.0%\n\nPour une simulation personnalisée, demandez-moi de simuler un crédit.",
		},
		{
			Question: "Quels documents sont nécessaires pour un prêt ?",
			Answer:   "Pour une demande de crédit, vous devez fournir :\n• Pièce d'identité\n• Justificatifs de revenus (3 derniers bulletins de salaire)\n• Relevés bancaires (3 derniers mois)\n• Justificatif de domicile\n• Selon le projet : devis, compromis de vente, etc.",
		},
		{
			Question: "Comment effectuer un virement ?",
			Answer:   "Pour effectuer un virement, dites-moi :\n• Le montant à transférer\n• Le nom du bénéficiaire\n• Le numéro de compte de destination\n\nJe vous guiderai ensuite pour la validation sécurisée.",
		},
		{
			Question: "Comment consulter mon solde ?",
			Answer:   "Demandez-moi simplement :\n• \"Quel est le solde de mon compte ?\"\n• \"Affiche mon solde\"\n• \"Combien j'ai sur mon compte ?\"\n\nJe vous afficherai le solde de tous vos comptes.",
		},
		{
			Question: "Comment voir mes transactions ?",
			Answer:   "Pour consulter vos transactions, demandez :\n• \"Affiche mes transactions\"\n• \"Historique de mes opérations\"\n• \"Dernières transactions\"\n\nJe vous montrerai vos opérations récentes.",
		},
	}
}
