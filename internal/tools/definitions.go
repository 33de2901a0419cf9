package tools

import "mansahay-rag/internal/llm"

// Definitions returns the JSON-schema declarations of every tool, in the
// order they are offered to the model.
func Definitions() []llm.ToolSpec {
	return []llm.ToolSpec{
		{
			Name:        NameTriggerEmergencyProtocol,
			Description: "Activates the emergency response system. Use IMMEDIATELY if the user mentions suicide, self-harm, or harming others.",
			Parameters: object([]string{"riskLevel", "reason"}, map[string]any{
				"riskLevel": enum("Must be HIGH_RISK", RiskHigh),
				"reason":    str("Specific quotes or reasons for triggering the protocol."),
			}),
		},
		{
			Name:        NameUpdateRealtimeAnalysis,
			Description: "Updates the dashboard with the user's current mental state. Call this whenever the user's mood or risk level shifts, even slightly.",
			Parameters: object([]string{"level", "sentiment", "reason"}, map[string]any{
				"level":     enum("Current risk/stress classification.", RiskStable, RiskElevated, RiskDistress, RiskHigh),
				"sentiment": str(`One or two words describing mood (e.g. "Anxious", "Hopeful").`),
				"reason":    str("Brief clinical note explaining why this level was chosen (max 1 sentence)."),
			}),
		},
		{
			Name:        NameSuggestCopingActivity,
			Description: `Suggests an interactive coping activity. Use "art" for creative expression, "grounding" for panic, "journaling" for processing, "breathing" for stress.`,
			Parameters: object([]string{"type", "focus"}, map[string]any{
				"type":  enum("The type of activity to launch.", ActivityBreathing, ActivityJournaling, ActivityGrounding, ActivityArt),
				"focus": str(`Goal or prompt for the activity (e.g. "List 3 gratitudes").`),
			}),
		},
		{
			Name:        NameFindProfessional,
			Description: "Searches for available doctors based on specialty and/or time preference.",
			Parameters: object([]string{"specialty"}, map[string]any{
				"specialty":      str("Required specialty (e.g. Psychiatrist, Therapist)."),
				"timePreference": str(`Optional preference (e.g. "Today", "Morning").`),
			}),
		},
		{
			Name:        NameBookAppointment,
			Description: "Books an appointment with a specific doctor. ONLY use this if the user has confirmed a time and doctor.",
			Parameters: object([]string{"doctorName", "time"}, map[string]any{
				"doctorName": str("Name of the doctor."),
				"time":       str("The confirmed time/date."),
				"reason":     str("Reason for visit."),
			}),
		},
		{
			Name:        NameStartAssessment,
			Description: "Initiates a clinical self-assessment questionnaire.",
			Parameters: object([]string{"assessmentType"}, map[string]any{
				"assessmentType": enum("PHQ9 for depression, GAD7 for anxiety, SLEEP for insomnia.", AssessmentPHQ9, AssessmentGAD7, AssessmentSleep),
			}),
		},
		{
			Name:        NameQueryMusicLibrary,
			Description: "Searches the music library for available tracks.",
			Parameters: object(nil, map[string]any{
				"query":  str("Search keywords (title, tag, or mood)."),
				"filter": enum("Category filter.", MusicAll, MusicNature, MusicAmbience, MusicWeather, MusicAnimals),
			}),
		},
		{
			Name:        NameControlMusicPlayer,
			Description: "Controls the ambient background music player by mood or by track title.",
			Parameters: object([]string{"action"}, map[string]any{
				"action":      enum("The action to perform.", PlayerPlay, PlayerPause, PlayerChangeTrack),
				"searchQuery": str("Mood keywords or the exact track title. Required if action is CHANGE_TRACK."),
			}),
		},
		{
			Name:        NameSaveResource,
			Description: "Saves a clinical report, journal entry, or analysis to the user's Wellness Vault for future reference.",
			Parameters: object([]string{"title", "content", "type"}, map[string]any{
				"title":   str("Title of the document."),
				"content": str("The full text content to save."),
				"type":    enum("Type of resource.", ResourceReport, ResourceJournal, ResourceFile),
			}),
		},
		{
			Name:        NameReadResource,
			Description: "Retrieves the full content of a resource from the Wellness Vault by ID.",
			Parameters: object([]string{"resourceId"}, map[string]any{
				"resourceId": str("The ID of the resource to read."),
			}),
		},
		{
			Name:        NameSearchKnowledgeBase,
			Description: "Searches uploaded documents and saved resources for passages relevant to a question.",
			Parameters: object([]string{"query"}, map[string]any{
				"query": str("What to look for, phrased as a question or keywords."),
			}),
		},
	}
}

func object(required []string, properties map[string]any) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func enum[T ~string](description string, values ...T) map[string]any {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = string(v)
	}
	return map[string]any{"type": "string", "description": description, "enum": names}
}
