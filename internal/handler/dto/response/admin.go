package response

import "github.com/google/uuid"

type CreatedResponse struct {
	ID uuid.UUID `json:"id"`
}

type BulkCreatedResponse struct {
	Requested int `json:"requested"`
	Created   int `json:"created"`
}
