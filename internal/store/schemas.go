package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Write-time document schemas. Enum values here are the single source of
// truth for what the API accepts; the column defaults in the migration
// mirror them.

const userCreateSchema = `{
	"type": "object",
	"required": ["name", "email"],
	"properties": {
		"name":   {"type": "string", "minLength": 1},
		"email":  {"type": "string", "minLength": 3},
		"avatar": {"type": "string"},
		"role":   {"type": "string", "enum": ["admin", "manager", "member"]}
	}
}`

const userUpdateSchema = `{
	"type": "object",
	"properties": {
		"name":   {"type": "string", "minLength": 1},
		"email":  {"type": "string", "minLength": 3},
		"avatar": {"type": "string"},
		"role":   {"type": "string", "enum": ["admin", "manager", "member"]}
	}
}`

const campaignCreateSchema = `{
	"type": "object",
	"required": ["name", "startDate", "endDate"],
	"properties": {
		"name":        {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"status":      {"type": "string", "enum": ["planning", "active", "paused", "completed"]},
		"budget":      {"type": "number", "minimum": 0},
		"startDate":   {"type": "string"},
		"endDate":     {"type": "string"},
		"owner":       {"type": ["string", "null"]},
		"color":       {"type": "string"},
		"kpis": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name":    {"type": "string"},
					"target":  {"type": "number"},
					"current": {"type": "number"},
					"unit":    {"type": "string"}
				}
			}
		}
	}
}`

const campaignUpdateSchema = `{
	"type": "object",
	"properties": {
		"name":        {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"status":      {"type": "string", "enum": ["planning", "active", "paused", "completed"]},
		"budget":      {"type": "number", "minimum": 0},
		"startDate":   {"type": "string"},
		"endDate":     {"type": "string"},
		"owner":       {"type": ["string", "null"]},
		"color":       {"type": "string"},
		"kpis":        {"type": "array"}
	}
}`

const taskCreateSchema = `{
	"type": "object",
	"required": ["title", "campaign"],
	"properties": {
		"title":       {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"status":      {"type": "string", "enum": ["todo", "in-progress", "review", "done"]},
		"priority":    {"type": "string", "enum": ["low", "medium", "high", "urgent"]},
		"labels": {
			"type": "array",
			"items": {"type": "string", "enum": ["content", "seo", "ads", "social", "email", "event", "design", "video"]}
		},
		"campaign":      {"type": "string", "minLength": 1},
		"assignee":      {"type": ["string", "null"]},
		"dueDate":       {"type": ["string", "null"]},
		"scheduledDate": {"type": ["string", "null"]},
		"checklist": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["text"],
				"properties": {
					"text":      {"type": "string"},
					"completed": {"type": "boolean"}
				}
			}
		},
		"attachments": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"url":  {"type": "string"}
				}
			}
		}
	}
}`

const taskUpdateSchema = `{
	"type": "object",
	"properties": {
		"title":       {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"status":      {"type": "string", "enum": ["todo", "in-progress", "review", "done"]},
		"priority":    {"type": "string", "enum": ["low", "medium", "high", "urgent"]},
		"labels": {
			"type": "array",
			"items": {"type": "string", "enum": ["content", "seo", "ads", "social", "email", "event", "design", "video"]}
		},
		"campaign":      {"type": "string", "minLength": 1},
		"assignee":      {"type": ["string", "null"]},
		"dueDate":       {"type": ["string", "null"]},
		"scheduledDate": {"type": ["string", "null"]},
		"order":         {"type": "integer", "minimum": 0},
		"checklist":     {"type": "array"},
		"attachments":   {"type": "array"}
	}
}`

const statusUpdateSchema = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status": {"type": "string", "enum": ["todo", "in-progress", "review", "done"]},
		"order":  {"type": "integer", "minimum": 0}
	}
}`

const reorderSchema = `{
	"type": "object",
	"required": ["tasks"],
	"properties": {
		"tasks": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["id", "status", "order"],
				"properties": {
					"id":     {"type": "string", "minLength": 1},
					"status": {"type": "string", "enum": ["todo", "in-progress", "review", "done"]},
					"order":  {"type": "integer", "minimum": 0}
				}
			}
		}
	}
}`

const commentCreateSchema = `{
	"type": "object",
	"required": ["text"],
	"properties": {
		"user": {"type": "string"},
		"text": {"type": "string", "minLength": 1}
	}
}`

// validateDocument checks a raw JSON document against a schema and turns
// schema violations into a ValidationError.
func validateDocument(schema string, doc json.RawMessage) error {
	body := strings.TrimSpace(string(doc))
	if body == "" {
		body = "null"
	}
	schemaLoader := gojsonschema.NewStringLoader(schema)
	docLoader := gojsonschema.NewStringLoader(body)
	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid document: %v", err)}
	}
	if res.Valid() {
		return nil
	}
	items := make([]ValidationErrorItem, 0, len(res.Errors()))
	for _, item := range res.Errors() {
		items = append(items, ValidationErrorItem{
			Path:    item.Field(),
			Message: item.Description(),
			Value:   item.Value(),
		})
	}
	return &ValidationError{Errors: items}
}
