package observations

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"riskwatch/internal/domain/observation"
)

// oracleReply is the JSON object the oracle is asked to return. The analyzer
// never decodes directly into it; the shape exists to render the schema into
// the prompt and to document the eight expected keys.
type oracleReply struct {
	StandardizedFloor    string `json:"StandardizedFloor"`
	CorrectedDescription string `json:"CorrectedDescription"`
	ImpactOnOperations   string `json:"ImpactOnOperations"`
	Likelihood           int    `json:"Likelihood" jsonschema:"minimum=1,maximum=5"`
	Severity             int    `json:"Severity" jsonschema:"minimum=1,maximum=5"`
	CorrectiveAction     string `json:"CorrectiveAction"`
	ResponsiblePerson    string `json:"ResponsiblePerson"`
	DeadlineSuggestion   string `json:"DeadlineSuggestion"`
}

var replySchemaJSON = func() string {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(oracleReply{})
	data, err := json.Marshal(schema)
	if err != nil {
		// The reply shape is a fixed struct; marshalling it cannot fail at runtime.
		panic(err)
	}
	return string(data)
}()

// buildPrompt embeds the three raw inputs verbatim, the closed floor and role
// enumerations, and the reply schema, and forbids any prose around the JSON.
func buildPrompt(text, floorInput, location string) string {
	floors, _ := json.Marshal(observation.StandardFloors)

	roles := make([]string, 0, len(observation.ResponsibleRoles))
	for _, role := range observation.ResponsibleRoles {
		roles = append(roles, "'"+role+"'")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the safety observation from a hotel environment.\n")
	fmt.Fprintf(&b, "User's Floor Input: %q\n", floorInput)
	fmt.Fprintf(&b, "Location: %q\n", location)
	fmt.Fprintf(&b, "Original Observation: %q\n\n", text)

	b.WriteString("Your task is to return a SINGLE, VALID JSON object. Do NOT include any text or markdown formatting before or after the JSON object.\n\n")
	b.WriteString("The JSON object must have exactly the following keys:\n")
	fmt.Fprintf(&b, "1. \"StandardizedFloor\": Map the \"User's Floor Input\" to ONE of the following standard labels: %s. Use context clues like \"G\" for \"groundfloor\", \"B1\" for \"basement 1\". If you cannot confidently map it, return the original \"User's Floor Input\".\n", floors)
	b.WriteString("2. \"CorrectedDescription\": A professionally rephrased and spell-checked version of the original observation.\n")
	b.WriteString("3. \"ImpactOnOperations\": The potential impact on hotel operations, guest experience, or staff safety if the hazard is not addressed.\n")
	b.WriteString("4. \"Likelihood\": An integer from 1 (very unlikely) to 5 (very likely).\n")
	b.WriteString("5. \"Severity\": An integer from 1 (minor) to 5 (critical).\n")
	b.WriteString("6. \"CorrectiveAction\": A clear, actionable recommendation.\n")
	fmt.Fprintf(&b, "7. \"ResponsiblePerson\": Assign ONE role from: %s.\n", strings.Join(roles, ", "))
	b.WriteString("8. \"DeadlineSuggestion\": A realistic deadline (e.g., \"Immediately\", \"24 Hours\", \"1 Week\").\n\n")

	fmt.Fprintf(&b, "The object must conform to this JSON schema:\n%s\n", replySchemaJSON)

	return b.String()
}
