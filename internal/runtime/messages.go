package runtime

// Customer-facing texts.
const (
	MsgEmptyInput      = "Je n'ai reçu aucun message. Comment puis-je vous aider ?"
	MsgUnreadableInput = "Je n'ai pas pu lire votre message. Pouvez-vous le reformuler plus brièvement ?"
	MsgClarify         = "Je n'ai pas bien compris votre demande. Pouvez-vous reformuler ?"
	MsgNothingPending  = "Aucune opération en cours."
	MsgCancelled       = "❌ Opération annulée. Que puis-je faire d'autre pour vous ?"
	MsgAuthRequired    = "🔒 Vous devez être connecté pour effectuer cette opération. Veuillez vous identifier."
	MsgAuthToConsult   = "🔒 Veuillez vous connecter pour consulter vos comptes."
	MsgAccountsDown    = "Vos comptes sont momentanément indisponibles. Veuillez réessayer dans quelques instants."
	MsgNoAccounts      = "Aucun compte n'est associé à votre profil."
	MsgNoTransactions  = "Aucune opération récente sur vos comptes."
	MsgAnswerYesNo     = "Veuillez répondre par « oui » pour confirmer ou « non » pour annuler."
	MsgAccountHint     = "\nIndiquez le compte choisi (ex : « compte 12 »)."
	MsgConfirmQuestion = "Confirmez-vous ? (oui/non)"

	// MsgTechnicalError is returned by hosts when a turn could not be processed at all.
	MsgTechnicalError = "Je rencontre une difficulté technique momentanée. Veuillez réessayer dans quelques instants."

	MsgGreeting = "Bonjour ! 👋 Je suis l'assistant virtuel d'Amen Bank. Je peux consulter vos soldes, " +
		"afficher vos dernières opérations, effectuer un virement, un dépôt ou un retrait, " +
		"et simuler ou demander un crédit. Que puis-je faire pour vous ?"
	MsgGoodbye    = "Merci de votre confiance et à bientôt chez Amen Bank ! 🏦"
	MsgAssistance = "Voici ce que je peux faire pour vous :\n" +
		"• 💰 « Quel est mon solde ? »\n" +
		"• 📋 « Affiche mes dernières transactions »\n" +
		"• 💸 « Je veux faire un virement »\n" +
		"• 🏦 « Je veux déposer 200 TND » ou « Retirer 100 TND »\n" +
		"• 📊 « Simule un crédit de 50000 TND sur 7 ans »\n" +
		"• 📝 « Je voudrais demander un crédit »\n\n" +
		"Pour toute autre question, un conseiller est joignable au 71 000 000."
	MsgGeneral = "Je suis l'assistant bancaire d'Amen Bank. Je peux vous aider pour vos soldes, " +
		"vos opérations, vos virements, dépôts, retraits et crédits. Que souhaitez-vous faire ?"
)

// Slot prompts.
const (
	promptTransferSource   = "De quel compte souhaitez-vous effectuer le virement ?"
	promptWithdrawalSource = "De quel compte souhaitez-vous effectuer le retrait ?"
	promptDepositTarget    = "Sur quel compte souhaitez-vous effectuer le dépôt ?"
	promptTransferAmount   = "Quel montant souhaitez-vous virer (en TND) ?"
	promptDepositAmount    = "Quel montant souhaitez-vous déposer (en TND) ?"
	promptWithdrawalAmount = "Quel montant souhaitez-vous retirer (en TND) ?"
	promptLoanAmount       = "Quel montant souhaitez-vous emprunter (en TND) ?"
	promptBeneficiary      = "À qui souhaitez-vous envoyer ce virement ? Indiquez le nom du bénéficiaire (ex : « à Ahmed »)."
	promptYears            = "Sur combien d'années souhaitez-vous rembourser (entre 1 et 30 ans) ?"
)
