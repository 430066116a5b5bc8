package identity

import "strings"

// Event types delivered by the identity provider.
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// Event is the webhook envelope. Only the fields used by the sync are decoded.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

type EventData struct {
	ID             string         `json:"id"`
	Username       *string        `json:"username"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
	ImageURL       string         `json:"image_url"`
	ProfileImgURL  string         `json:"profile_img_url"`
}

// PrimaryEmail is the first listed address, or "" if there is none.
func (d EventData) PrimaryEmail() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return d.EmailAddresses[0].EmailAddress
}

// DisplayName is the trimmed username, falling back to the primary email.
func (d EventData) DisplayName() string {
	if d.Username != nil {
		if name := strings.TrimSpace(*d.Username); name != "" {
			return name
		}
	}
	return d.PrimaryEmail()
}

// Avatar prefers image_url over the legacy profile_img_url.
func (d EventData) Avatar() string {
	if d.ImageURL != "" {
		return d.ImageURL
	}
	return d.ProfileImgURL
}
