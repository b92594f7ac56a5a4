package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityTypeCandidate EntityType = "candidate"
	EntityTypeJob       EntityType = "job"
	EntityTypeProject   EntityType = "project"
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeCandidate, EntityTypeJob, EntityTypeProject:
		return true
	}
	return false
}

type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// Rank orders importances for sorting, highest first.
func (i Importance) Rank() int {
	switch i {
	case ImportanceHigh:
		return 0
	case ImportanceMedium:
		return 1
	case ImportanceLow:
		return 2
	}
	return 1
}

type Availability string

const (
	AvailabilityImmediate Availability = "immediate"
	AvailabilityTwoWeeks  Availability = "two_weeks"
	AvailabilityOneMonth  Availability = "one_month"
	AvailabilityFlexible  Availability = "flexible"
)

type Skill struct {
	Name       string     `json:"name"`
	Importance Importance `json:"importance,omitempty"`
	Weight     float64    `json:"weight,omitempty"`
}

// EffectiveWeight resolves a skill's weight, falling back to its importance
// when no explicit weight is set.
func (s Skill) EffectiveWeight() float64 {
	if s.Weight > 0 {
		return s.Weight
	}
	switch s.Importance {
	case ImportanceHigh:
		return 3
	case ImportanceLow:
		return 1
	}
	return 2
}

type Location struct {
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Remote    bool    `json:"remote"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	HasCoords bool    `json:"has_coords"`
}

// Entity is the normalized shape for candidates, jobs and projects. Records
// are owned by the external profile/CRUD service; this engine reads them and
// never writes back. Loose upstream skill shapes are converted into a
// SkillList once at the boundary so scoring never branches on shape.
type Entity struct {
	ID              uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Type            EntityType   `gorm:"type:text;not null;index" json:"type"`
	Name            string       `gorm:"type:text" json:"name"`
	Company         string       `gorm:"type:text" json:"company,omitempty"`
	Industry        string       `gorm:"type:text" json:"industry,omitempty"`
	Description     string       `gorm:"type:text" json:"description,omitempty"`
	Skills          SkillList    `gorm:"type:jsonb" json:"skills"`
	Location        Location     `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	SalaryMin       float64      `json:"salary_min,omitempty"`
	SalaryMax       float64      `json:"salary_max,omitempty"`
	ExperienceYears int          `json:"experience_years,omitempty"`
	ExperienceMin   int          `json:"experience_min,omitempty"`
	ExperienceMax   int          `json:"experience_max,omitempty"`
	Availability    Availability `gorm:"type:text" json:"availability,omitempty"`
	EmploymentType  string       `gorm:"type:text" json:"employment_type,omitempty"`
	Embedding       Vector       `gorm:"type:jsonb" json:"-"`
	CreatedAt       time.Time    `gorm:"type:timestamp;default:now()" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"type:timestamp;default:now()" json:"updated_at"`
}

func (Entity) TableName() string {
	return "entities"
}

// HasEmbedding reports whether similarity scoring is possible for this
// entity. Without a vector the engine degrades to attribute-only scoring.
func (e *Entity) HasEmbedding() bool {
	return len(e.Embedding) > 0
}

type SkillList []Skill

func (l SkillList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal skills: %w", err)
	}
	return string(b), nil
}

func (l *SkillList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Names returns the raw skill names of the list.
func (l SkillList) Names() []string {
	names := make([]string, 0, len(l))
	for _, s := range l {
		names = append(names, s.Name)
	}
	return names
}

// Vector is a fixed-dimensionality embedding produced by the external
// embedding service and persisted alongside the entity record.
type Vector []float32

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return string(b), nil
}

func (v *Vector) Scan(value interface{}) error {
	return scanJSON(value, v)
}

type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type FloatMap map[string]float64

func (m FloatMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal float map: %w", err)
	}
	return string(b), nil
}

func (m *FloatMap) Scan(value interface{}) error {
	return scanJSON(value, m)
}

func scanJSON(value interface{}, target interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}
