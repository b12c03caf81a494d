package service

import (
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-site-api/internal/models"
	"github.com/noah-isme/faculty-site-api/internal/schema"
)

// Content bundles the entity services for the five content tables.
type Content struct {
	Departments   *EntityService[models.Department]
	Programmes    *EntityService[models.Programme]
	Staff         *EntityService[models.Staff]
	News          *EntityService[models.News]
	ResearchAreas *EntityService[models.ResearchArea]
}

// NewContent wires one entity service per content table over a shared gateway.
func NewContent(gateway contentGateway, validate *validator.Validate, logger *zap.Logger, metrics mutationRecorder) *Content {
	return &Content{
		Departments:   NewEntityService[models.Department](schema.Departments, gateway, validate, logger, metrics),
		Programmes:    NewEntityService[models.Programme](schema.Programmes, gateway, validate, logger, metrics),
		Staff:         NewEntityService[models.Staff](schema.Staff, gateway, validate, logger, metrics),
		News:          NewEntityService[models.News](schema.News, gateway, validate, logger, metrics),
		ResearchAreas: NewEntityService[models.ResearchArea](schema.ResearchAreas, gateway, validate, logger, metrics),
	}
}
