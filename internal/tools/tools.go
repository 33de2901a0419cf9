// Package tools defines the functions the chat model may call. Each tool is a
// typed struct; Decode turns a raw function call into one of them.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Tool names as declared to the model.
const (
	NameTriggerEmergencyProtocol = "triggerEmergencyProtocol"
	NameUpdateRealtimeAnalysis   = "updateRealtimeAnalysis"
	NameSuggestCopingActivity    = "suggestCopingActivity"
	NameFindProfessional         = "findProfessional"
	NameBookAppointment          = "bookAppointment"
	NameStartAssessment          = "startAssessment"
	NameQueryMusicLibrary        = "queryMusicLibrary"
	NameControlMusicPlayer       = "controlMusicPlayer"
	NameSaveResource             = "saveResource"
	NameReadResource             = "readResource"
	NameSearchKnowledgeBase      = "searchKnowledgeBase"
)

// Call is a decoded tool call. The set of implementations is closed.
type Call interface {
	ToolName() string
	validate() error
}

// RiskLevel classifies the user's current state.
type RiskLevel string

const (
	RiskStable   RiskLevel = "STABLE"
	RiskElevated RiskLevel = "ELEVATED"
	RiskDistress RiskLevel = "DISTRESS"
	RiskHigh     RiskLevel = "HIGH_RISK"
)

// ActivityType selects a coping widget.
type ActivityType string

const (
	ActivityBreathing  ActivityType = "breathing"
	ActivityJournaling ActivityType = "journaling"
	ActivityGrounding  ActivityType = "grounding"
	ActivityArt        ActivityType = "art"
)

// AssessmentType selects a questionnaire.
type AssessmentType string

const (
	AssessmentPHQ9  AssessmentType = "PHQ9"
	AssessmentGAD7  AssessmentType = "GAD7"
	AssessmentSleep AssessmentType = "SLEEP"
)

// MusicFilter is a music library category.
type MusicFilter string

const (
	MusicAll      MusicFilter = "All"
	MusicNature   MusicFilter = "Nature"
	MusicAmbience MusicFilter = "Ambience"
	MusicWeather  MusicFilter = "Weather"
	MusicAnimals  MusicFilter = "Animals"
)

// PlayerAction controls the ambient music player.
type PlayerAction string

const (
	PlayerPlay        PlayerAction = "PLAY"
	PlayerPause       PlayerAction = "PAUSE"
	PlayerChangeTrack PlayerAction = "CHANGE_TRACK"
)

// ResourceType is the kind of document saved to the vault.
type ResourceType string

const (
	ResourceReport  ResourceType = "report"
	ResourceJournal ResourceType = "journal"
	ResourceFile    ResourceType = "file"
)

// TriggerEmergencyProtocol activates the emergency response flow.
type TriggerEmergencyProtocol struct {
	RiskLevel RiskLevel `json:"riskLevel"`
	Reason    string    `json:"reason"`
}

func (TriggerEmergencyProtocol) ToolName() string { return NameTriggerEmergencyProtocol }

func (c *TriggerEmergencyProtocol) validate() error {
	if err := oneOf("riskLevel", c.RiskLevel, RiskHigh); err != nil {
		return err
	}
	return required("reason", c.Reason)
}

// UpdateRealtimeAnalysis updates the dashboard with the user's mental state.
type UpdateRealtimeAnalysis struct {
	Level     RiskLevel `json:"level"`
	Sentiment string    `json:"sentiment"`
	Reason    string    `json:"reason"`
}

func (UpdateRealtimeAnalysis) ToolName() string { return NameUpdateRealtimeAnalysis }

func (c *UpdateRealtimeAnalysis) validate() error {
	if err := oneOf("level", c.Level, RiskStable, RiskElevated, RiskDistress, RiskHigh); err != nil {
		return err
	}
	if err := required("sentiment", c.Sentiment); err != nil {
		return err
	}
	return required("reason", c.Reason)
}

// SuggestCopingActivity launches an interactive coping widget.
type SuggestCopingActivity struct {
	Type  ActivityType `json:"type"`
	Focus string       `json:"focus"`
}

func (SuggestCopingActivity) ToolName() string { return NameSuggestCopingActivity }

func (c *SuggestCopingActivity) validate() error {
	if err := oneOf("type", c.Type, ActivityBreathing, ActivityJournaling, ActivityGrounding, ActivityArt); err != nil {
		return err
	}
	return required("focus", c.Focus)
}

// FindProfessional searches for available doctors.
type FindProfessional struct {
	Specialty      string `json:"specialty"`
	TimePreference string `json:"timePreference,omitempty"`
}

func (FindProfessional) ToolName() string { return NameFindProfessional }

func (c *FindProfessional) validate() error {
	return required("specialty", c.Specialty)
}

// BookAppointment books a confirmed appointment.
type BookAppointment struct {
	DoctorName string `json:"doctorName"`
	Time       string `json:"time"`
	Reason     string `json:"reason,omitempty"`
}

func (BookAppointment) ToolName() string { return NameBookAppointment }

func (c *BookAppointment) validate() error {
	if err := required("doctorName", c.DoctorName); err != nil {
		return err
	}
	return required("time", c.Time)
}

// StartAssessment opens a clinical self-assessment questionnaire.
type StartAssessment struct {
	AssessmentType AssessmentType `json:"assessmentType"`
}

func (StartAssessment) ToolName() string { return NameStartAssessment }

func (c *StartAssessment) validate() error {
	return oneOf("assessmentType", c.AssessmentType, AssessmentPHQ9, AssessmentGAD7, AssessmentSleep)
}

// QueryMusicLibrary searches the music library. An empty filter means All.
type QueryMusicLibrary struct {
	Query  string      `json:"query,omitempty"`
	Filter MusicFilter `json:"filter,omitempty"`
}

func (QueryMusicLibrary) ToolName() string { return NameQueryMusicLibrary }

func (c *QueryMusicLibrary) validate() error {
	if c.Filter == "" {
		c.Filter = MusicAll
	}
	return oneOf("filter", c.Filter, MusicAll, MusicNature, MusicAmbience, MusicWeather, MusicAnimals)
}

// ControlMusicPlayer plays, pauses or changes the ambient track.
type ControlMusicPlayer struct {
	Action      PlayerAction `json:"action"`
	SearchQuery string       `json:"searchQuery,omitempty"`
}

func (ControlMusicPlayer) ToolName() string { return NameControlMusicPlayer }

func (c *ControlMusicPlayer) validate() error {
	if err := oneOf("action", c.Action, PlayerPlay, PlayerPause, PlayerChangeTrack); err != nil {
		return err
	}
	if c.Action == PlayerChangeTrack {
		return required("searchQuery", c.SearchQuery)
	}
	return nil
}

// SaveResource stores a report, journal entry or file in the knowledge base.
type SaveResource struct {
	Title   string       `json:"title"`
	Content string       `json:"content"`
	Type    ResourceType `json:"type"`
}

func (SaveResource) ToolName() string { return NameSaveResource }

func (c *SaveResource) validate() error {
	if err := required("title", c.Title); err != nil {
		return err
	}
	if err := required("content", c.Content); err != nil {
		return err
	}
	return oneOf("type", c.Type, ResourceReport, ResourceJournal, ResourceFile)
}

// ReadResource retrieves the full text of a stored resource.
type ReadResource struct {
	ResourceID string `json:"resourceId"`
}

func (ReadResource) ToolName() string { return NameReadResource }

func (c *ReadResource) validate() error {
	return required("resourceId", c.ResourceID)
}

// SearchKnowledgeBase runs a fusion search over ingested documents.
type SearchKnowledgeBase struct {
	Query string `json:"query"`
}

func (SearchKnowledgeBase) ToolName() string { return NameSearchKnowledgeBase }

func (c *SearchKnowledgeBase) validate() error {
	return required("query", c.Query)
}

// UnknownToolError is returned when the model calls a tool that does not exist.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// ArgumentError is returned when a tool call's arguments are malformed or invalid.
type ArgumentError struct {
	Tool    string
	Field   string
	Message string
}

func (e *ArgumentError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Tool, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Tool, e.Field, e.Message)
}

// Decode parses the raw JSON arguments of a call to the named tool.
func Decode(name, arguments string) (Call, error) {
	var call Call
	switch name {
	case NameTriggerEmergencyProtocol:
		call = &TriggerEmergencyProtocol{}
	case NameUpdateRealtimeAnalysis:
		call = &UpdateRealtimeAnalysis{}
	case NameSuggestCopingActivity:
		call = &SuggestCopingActivity{}
	case NameFindProfessional:
		call = &FindProfessional{}
	case NameBookAppointment:
		call = &BookAppointment{}
	case NameStartAssessment:
		call = &StartAssessment{}
	case NameQueryMusicLibrary:
		call = &QueryMusicLibrary{}
	case NameControlMusicPlayer:
		call = &ControlMusicPlayer{}
	case NameSaveResource:
		call = &SaveResource{}
	case NameReadResource:
		call = &ReadResource{}
	case NameSearchKnowledgeBase:
		call = &SearchKnowledgeBase{}
	default:
		return nil, &UnknownToolError{Name: name}
	}

	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	if err := json.Unmarshal([]byte(arguments), call); err != nil {
		return nil, &ArgumentError{Tool: name, Message: fmt.Sprintf("invalid arguments: %v", err)}
	}
	if err := call.validate(); err != nil {
		var argErr *ArgumentError
		if errors.As(err, &argErr) {
			argErr.Tool = name
		}
		return nil, err
	}
	return call, nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ArgumentError{Field: field, Message: "is required"}
	}
	return nil
}

func oneOf[T ~string](field string, value T, allowed ...T) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	if value == "" {
		return &ArgumentError{Field: field, Message: "is required"}
	}
	return &ArgumentError{Field: field, Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(names, ", "), value)}
}
