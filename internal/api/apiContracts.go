package api

// AskRequest starts a streamed answer. Subject and Year are optional
// retrieval filters over the indexed past questions.
type AskRequest struct {
	Question string `json:"question" validate:"required"`
	Subject  string `json:"subject,omitempty"`
	Year     int    `json:"year,omitempty"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
}

// Stream framing for the /ask response. Each fragment is one event:
// one or more EventPrefix lines followed by a blank line. A fragment
// whose payload starts with ErrorPrefix is terminal.
const (
	EventPrefix = "data: "
	ErrorPrefix = "[ERROR] "
)
