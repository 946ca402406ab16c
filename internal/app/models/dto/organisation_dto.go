package dto

// CreateOrganisationRequest represents a request to create an organisation
type CreateOrganisationRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Address string `json:"address" binding:"required"`
	Website string `json:"website" binding:"required,url"`
	Contact string `json:"contact" binding:"required,min=10,max=10,numeric"`
}

// UpdateOrganisationRequest represents a request to update an organisation
type UpdateOrganisationRequest struct {
	Name    *string `json:"name,omitempty" binding:"omitempty,min=2,max=100"`
	Address *string `json:"address,omitempty"`
	Website *string `json:"website,omitempty" binding:"omitempty,url"`
	Contact *string `json:"contact,omitempty" binding:"omitempty,min=10,max=10,numeric"`
}
