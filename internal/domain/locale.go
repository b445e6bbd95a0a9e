package domain

import "fmt"

// LocalizeTokenNear renders the proximity alert title and body for a
// language code. Unrecognized or empty codes fall back to English rather
// than erroring; supported locales are "en" and "ml".
func LocalizeTokenNear(languageCode string, currentPosition, ownPosition int) (title, body string) {
	switch languageCode {
	case "ml":
		title = "നിങ്ങളുടെ ഊഴം അടുത്തിരിക്കുന്നു!"
		body = fmt.Sprintf("നിലവിലെ ടോക്കൺ %d ആണ്. നിങ്ങളുടെ ടോക്കൺ %d ആണ്.", currentPosition, ownPosition)
	default:
		title = "Your Turn is Approaching!"
		body = fmt.Sprintf("Current Token is %d. You are Token %d.", currentPosition, ownPosition)
	}
	return title, body
}
