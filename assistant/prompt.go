package assistant

import (
	"fmt"
	"strings"

	"github.com/astepien/roam/kernel/tool"
)

const weatherSystemPrompt = `You are a helpful weather assistant. When users ask about weather,
use the get_weather tool to fetch current weather data.
Always provide helpful and concise responses about weather conditions.
If the user doesn't specify a location, ask them which city they want weather for.`

const tripPlanPromptWithMaps = `You are a trip planning assistant. You help users find places and show them on a map.

CRITICAL RULES - YOU MUST FOLLOW THESE:
1. NEVER invent, guess, or make up coordinates. Coordinates do not exist until you get them from a tool.
2. When a user asks for places, you MUST first call maps_search_places with the user's exact request.
3. After maps_search_places returns results, extract the REAL coordinates from the response.
4. Only then call add_marker using the coordinates you extracted from the search results.
5. If you need the user's location, call get_user_location first.

%s

WORKFLOW FOR FINDING PLACES:
When user says something like "find me <places> in <location>" or "show <places> near me":

Step 1: Call maps_search_places with query matching what the user asked for.
        Wait for the response.

Step 2: The response will contain places with real coordinates in geometry.location.lat and geometry.location.lng.
        Read these coordinates carefully.

Step 3: For each place you want to show, call add_marker with:
        - name: the place name from the search results
        - description: the address from the search results
        - latitude: the geometry.location.lat value from search results
        - longitude: the geometry.location.lng value from search results
        - category: appropriate category (RESTAURANT, MUSEUM, PARK, LANDMARK, ENTERTAINMENT, OTHER)

REMEMBER: The latitude and longitude for add_marker MUST be extracted from maps_search_places results.
You cannot call add_marker before you have real coordinates from a search or from the user.`

const tripPlanPromptLocal = `You are a trip planning assistant.

NOTE: Google Maps search is currently unavailable.

%s

Without Google Maps, you can:
- Use get_user_location to get the user's GPS position
- Use find_places to search the built-in place database near a coordinate
- Use add_marker if the user provides specific coordinates
- Use create_route to create routes between existing markers
- Use get_weather to check weather conditions

If the user asks for places outside the built-in database, inform them that full place search
is temporarily unavailable and ask if they can provide specific coordinates instead.`

// formatToolsForPrompt renders a numbered tool listing for inclusion in
// the system prompt, so the model sees the same registry it can call.
func formatToolsForPrompt(tools []tool.Tool) string {
	var b strings.Builder
	b.WriteString("AVAILABLE TOOLS:\n\n")
	for i, t := range tools {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t.Name())
		fmt.Fprintf(&b, "   %s\n\n", t.Description())
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatHistory renders the recent conversation as context prefixed to
// the user's message. Only the last historyWindow messages are kept.
func formatHistory(history []HistoryMessage) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	var b strings.Builder
	b.WriteString("\n\nPrevious conversation:\n")
	for _, msg := range history {
		role := "Assistant"
		if msg.FromUser {
			role = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, msg.Content)
	}
	b.WriteString("\nContinue the conversation:\n")
	return b.String()
}
