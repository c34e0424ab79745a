package prompt

import (
	"encoding/json"
)

// ClassificationPrompt is the fixed instruction sent with every image. The
// model is asked to answer with a JSON object wrapped in <json></json> tags.
const ClassificationPrompt = `Given an image of this disaster, create a json filling out the following characteristics. Provide numeric estimates of events, or brief descriptions or yes/no. Do not be vague, and specify a reasonable number or number range. Do not include the information section if one exists for a certain parameter, and just the parameter with its value.

Parameter, Information:
Description, One sentence description of event
Disaster Type, Type of disaster (water, fire, earthquake, drought, demolition, etc.)
Region, Type of region (urban, rural, etc.)
Damaged Buildings, Number of damaged buildings
Damaged Vehicles, Number of damaged vehicles
Financial Burden, Financial cost of affected region (in USD)
Displaced People, number of displaced people
Recovery Personnel
Equipment, What equipment is needed (water, food, cranes etc.)
Response Time
Disaster Cause
Medical Aid Needed
Insurance Claims, estimated cost of insurance claims
Weather

Make your first row the parameters, and the second row its values. Please output your json in <json></json> tags.

Example of some image:
Description, Disaster Type, Region, Damaged Buildings, Damaged Vehicles, Financial Burden, Displaced People, Recovery Personnel, Equipment, Response Time, Disaster Cause, Medical Aid Needed, Insurance Claims, Weather
"Severe flooding caused by torrential rains", "Water", "Urban", 150, 30, $5000000, 2000, "Emergency services, volunteers", "Water, food, medical supplies, rescue boats", "8-22 hours", "Heavy rainfall", "Yes", 2000000, "Rainy"`

// Descriptor is one classification request: the instruction text plus the
// image payloads (data URIs) it applies to.
type Descriptor struct {
	Prompt string
	Images []string
}

// Build assembles a Descriptor for the given image payloads using the fixed
// classification instruction.
func Build(images []string) Descriptor {
	return Descriptor{
		Prompt: ClassificationPrompt,
		Images: images,
	}
}

type textPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imagePart struct {
	Type     string `json:"type"`
	ImageURL string `json:"image_url"`
}

type message struct {
	Role    string `json:"role"`
	Content []any  `json:"content"`
}

// Serialize renders the descriptor as a canonical byte sequence. The output
// is deterministic for a given prompt and image set, so it doubles as the
// cache key material: byte-identical requests serialize identically, and any
// difference in prompt or payload changes the output.
func (d Descriptor) Serialize() []byte {
	content := make([]any, 0, len(d.Images)+1)
	content = append(content, textPart{Type: "text", Text: d.Prompt})
	for _, img := range d.Images {
		content = append(content, imagePart{Type: "image_url", ImageURL: img})
	}
	data, err := json.Marshal(message{Role: "user", Content: content})
	if err != nil {
		// The message is built from plain strings; marshaling cannot fail.
		panic(err)
	}
	return data
}
