package model

// ContactSubmission is the JSON body of a contact form submission. The fields
// are pointers so that a missing or null value can be told apart from an empty
// string during validation.
type ContactSubmission struct {
	Name    *string `json:"name"    binding:"required"`
	Email   *string `json:"email"   binding:"required"`
	Phone   *string `json:"phone"   binding:"required"`
	Message *string `json:"message" binding:"required"`
}

// Acknowledgment is the response to an accepted contact form submission.
type Acknowledgment struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Welcome is the response of the root endpoint.
type Welcome struct {
	Message string `json:"message"`
}

// Project describes one portfolio project shown to visitors.
type Project struct {
	Id          int      `json:"id"          yaml:"id"`
	Title       string   `json:"title"       yaml:"title"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image"       yaml:"image"`
	Tech        []string `json:"tech"        yaml:"tech"`
	RepoLink    string   `json:"repoLink"    yaml:"repoLink"`
	LiveLink    string   `json:"liveLink"    yaml:"liveLink"`
}
