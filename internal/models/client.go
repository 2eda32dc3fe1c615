package models

// Client statuses
const (
	ClientActive   = "active"
	ClientOverdue  = "overdue"
	ClientExternal = "external"
)

const DefaultTagColor = "#f8f9fa"
const DefaultClientImage = "/static/img/default-avatar.png"

type ClientTag struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

type Client struct {
	Document
	ClientCode   string     `json:"client_id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Email        string     `json:"email,omitempty"`
	Location     string     `json:"location,omitempty"`
	IDType       string     `json:"id_type,omitempty"`
	IDNumber     string     `json:"id_number,omitempty"`
	NextOfKin    string     `json:"next_of_kin,omitempty"`
	NextOfKinTel string     `json:"next_of_kin_phone,omitempty"`
	Relationship string     `json:"relationship,omitempty"`
	ImageURL     string     `json:"image_url,omitempty"`
	Status       string     `json:"status"`
	Tag          *ClientTag `json:"tag,omitempty"`
	CreatedBy    string     `json:"created_by,omitempty"`
}

// Keys returns every spelling other documents may use to reference this
// client: its storage id and its human code.
func (c *Client) Keys() []string {
	keys := []string{NormalizeRef(c.ID)}
	if code := NormalizeRef(c.ClientCode); code != "" && code != keys[0] {
		keys = append(keys, code)
	}
	return keys
}

// TagLabel and TagColor fall back to an untagged look.
func (c *Client) TagLabel() string {
	if c.Tag == nil {
		return ""
	}
	return c.Tag.Label
}

func (c *Client) TagColor() string {
	if c.Tag == nil || c.Tag.Color == "" {
		return DefaultTagColor
	}
	return c.Tag.Color
}

// RegisterClientRequest is the staff form for enrolling a client
type RegisterClientRequest struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	Location     string `json:"location"`
	IDType       string `json:"id_type" validate:"required"`
	IDNumber     string `json:"id_number" validate:"required"`
	NextOfKin    string `json:"next_of_kin" validate:"required"`
	NextOfKinTel string `json:"next_of_kin_phone" validate:"required"`
	Relationship string `json:"relationship" validate:"required"`
	ImageURL     string `json:"image_url"`
}

type UpdateTagRequest struct {
	Label string `json:"label" validate:"required"`
	Color string `json:"color"`
}
