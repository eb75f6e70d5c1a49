package domain

// ImageField is the only form field of an upload payload.
const ImageField = "image"

// Payload is the multipart form body of one upload. It is built fresh for
// every selection and discarded after the request is sent.
type Payload struct {
	Field string
	File  SelectedFile
}

// NewPayload binds the selected file to the image field.
func NewPayload(file SelectedFile) Payload {
	return Payload{Field: ImageField, File: file}
}

// Response is what the image server answered. The trigger never inspects it
// beyond logging.
type Response struct {
	StatusCode int
	Status     string
}
