package middleware

import "net/http"

// Cross-origin isolation headers attached to every response that passes the classifier.
const (
	HeaderCOEP = "Cross-Origin-Embedder-Policy"
	HeaderCOOP = "Cross-Origin-Opener-Policy"
	valueCOEP  = "require-corp"
	valueCOOP  = "same-origin"
)

func setIsolationHeaders(h http.Header) {
	h.Set(HeaderCOEP, valueCOEP)
	h.Set(HeaderCOOP, valueCOOP)
}
