package handler

const (
	errInternalServer     = "Internal server error"
	errEmailInUse         = "Email already in use."
	errInvalidCredentials = "Invalid credentials"
	errUserNotFound       = "User not found"
	errResetTokenInvalid  = "Invalid or expired token"
	errNotAuthenticated   = "Not authenticated"
	errEnhanceFailed      = "Failed to enhance prompt"
	errFeedbackFailed     = "Failed to get feedback."
	errPatternizeFailed   = "Failed to patternize prompt."
	errGroqNotConfigured  = "Groq API key not configured. Please set GROQ_API_KEY environment variable."
)
