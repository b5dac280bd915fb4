package dialogue

import (
	"fmt"

	"github.com/bargaj/collectcall/internal/domain"
)

const (
	promptRetryYesNo = "Sorry, I didn't get that. Could you please say yes or no?"
	promptDeclined   = "Alright, we'll reach out another time. Goodbye."
	promptMistake    = "Did someone else use your documents, or could this be a mistake? " +
		"Please say yes if you think it's a mistake, or no if not."
	promptMisuseClosing = "Our support team will investigate the issue. Goodbye."
	promptNoLoanClosing = "Alright, we have recorded your response. Goodbye."
	promptReasonMenu    = "Please select the reason why the last installment was not paid. " +
		"Press 1 if you didn't know the EMI was due. " +
		"Press 2 if the collector didn't come. " +
		"Press 3 if you don't have money right now. " +
		"Press 4 if you forgot. " +
		"Press 5 if you will pay soon."
	promptSettlement = "We can help with a settlement option where you pay a lower amount. Would you like that?"
	promptReminder   = "Thank you. Should I set a reminder for your next payment?"
	promptClosing    = "Thank you for your time. Staying on track helps your credit score. Goodbye!"
	promptGiveUp     = "Sorry, I wasn't able to understand you today. We'll reach out another time. Goodbye."
	promptDropped    = "Sorry, we're having trouble with this call. We'll reach out another time. Goodbye."

	// PromptNotFound is spoken when the called number has no borrower record.
	PromptNotFound = "We couldn't find your details. Goodbye."
)

func promptIntro(b *domain.BorrowerRecord) string {
	return fmt.Sprintf("Namaste! This is a call from Bargaj Finance. "+
		"I'm here to talk about your microfinance loan. Am I speaking to %s?", b.Name)
}

func promptLoanSummary(b *domain.BorrowerRecord) string {
	return fmt.Sprintf("You have an active loan of ₹%s with a pending amount of ₹%s. "+
		"Last due date was %s. Did you take this loan?",
		b.LoanAmount, b.PendingAmount, b.LastDueDate)
}

// reasonForDigit maps a keypad selection to the recorded non-payment reason.
// Unmapped digits return "", which keeps the caller in the menu.
func reasonForDigit(d string) string {
	switch d {
	case "1":
		return "Didn't know EMI was due"
	case "2":
		return "Collector didn't come"
	case "3":
		return "No money"
	case "4":
		return "Forgot"
	case "5":
		return "Will pay soon"
	}
	return ""
}
