package models

// Attachment is an uploaded file kept with the document that references it.
// Inline storage fills Data; external storage fills URL. Key is the content
// hash in both cases.
type Attachment struct {
	Filename    string `bson:"filename" json:"filename"`
	ContentType string `bson:"contentType" json:"contentType"`
	Size        int64  `bson:"size,omitempty" json:"size,omitempty"`
	Data        string `bson:"data,omitempty" json:"data,omitempty"`
	Key         string `bson:"key,omitempty" json:"key,omitempty"`
	URL         string `bson:"url,omitempty" json:"url,omitempty"`
}

// DataURI renders an inline attachment the way the front end displays it.
func (a *Attachment) DataURI() string {
	if a == nil || a.Data == "" {
		return ""
	}
	return "data:" + a.ContentType + ";base64," + a.Data
}
