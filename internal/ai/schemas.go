package ai

import (
	"encoding/json"
	"fmt"
	"sync"

	codepulseErrors "codepulse/internal/errors"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"
)

// TaskKind names a structured generation task with a fixed response shape.
type TaskKind string

const (
	TaskGeneralQuestions TaskKind = "general-questions"
	TaskCodingChallenges TaskKind = "coding-challenges"
	TaskMachineCoding    TaskKind = "machine-coding"
	TaskSystemDesign     TaskKind = "system-design"
	TaskResumeAnalysis   TaskKind = "resume-analysis"
	TaskCompanyInsights  TaskKind = "company-insights"
	TaskSolutionGuide    TaskKind = "solution-guide"
)

// SchemaDescriptor pairs the genai response schema sent with a request with a
// JSON Schema mirror used to deep-validate what comes back. The mirror is
// compiled lazily on first use.
type SchemaDescriptor struct {
	Kind     TaskKind
	Response *genai.Schema

	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
}

// SchemaFor returns the descriptor for a task kind, or nil for kinds that
// produce free text (company-insights is grounded prose, not JSON).
func SchemaFor(kind TaskKind) *SchemaDescriptor {
	return schemaRegistry[kind]
}

var schemaRegistry = map[TaskKind]*SchemaDescriptor{
	TaskGeneralQuestions: {Kind: TaskGeneralQuestions, Response: questionListSchema()},
	TaskSystemDesign:     {Kind: TaskSystemDesign, Response: questionListSchema()},
	TaskCodingChallenges: {Kind: TaskCodingChallenges, Response: challengeListSchema()},
	TaskMachineCoding:    {Kind: TaskMachineCoding, Response: machineCodingSchema()},
	TaskResumeAnalysis:   {Kind: TaskResumeAnalysis, Response: resumeAnalysisSchema()},
	TaskSolutionGuide:    {Kind: TaskSolutionGuide, Response: solutionGuideSchema()},
}

// Validate checks a decoded response document against the descriptor's JSON
// Schema. The first violation is reported with its field path so logs point
// at the exact missing or mistyped property.
func (d *SchemaDescriptor) Validate(doc []byte) error {
	d.compileOnce.Do(func() {
		jsonSchema, err := json.Marshal(toJSONSchema(d.Response))
		if err != nil {
			d.compileErr = err
			return
		}
		d.compiled, d.compileErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jsonSchema))
	})
	if d.compileErr != nil {
		return codepulseErrors.NewInternalError(codepulseErrors.ErrCodeInvalidConfig,
			fmt.Sprintf("Response schema for %s does not compile", d.Kind), d.compileErr)
	}

	result, err := d.compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return codepulseErrors.NewAIError(codepulseErrors.ErrCodeJSONSyntax,
			"Model response could not be validated", err)
	}

	if !result.Valid() {
		first := result.Errors()[0]
		return codepulseErrors.NewAIError(codepulseErrors.ErrCodeSchemaViolation,
			fmt.Sprintf("Model response violates the %s schema: %s: %s", d.Kind, first.Field(), first.Description()), nil).
			WithContext("field", first.Field()).
			WithContext("violations", len(result.Errors()))
	}

	return nil
}

// toJSONSchema converts a genai response schema into draft-04 JSON Schema.
// Only the subset of keywords the registry actually uses is mapped.
func toJSONSchema(s *genai.Schema) map[string]any {
	if s == nil {
		return map[string]any{}
	}

	out := map[string]any{}

	switch s.Type {
	case genai.TypeObject:
		out["type"] = "object"
		if len(s.Properties) > 0 {
			props := make(map[string]any, len(s.Properties))
			for name, prop := range s.Properties {
				props[name] = toJSONSchema(prop)
			}
			out["properties"] = props
		}
		if len(s.Required) > 0 {
			out["required"] = s.Required
		}
	case genai.TypeArray:
		out["type"] = "array"
		if s.Items != nil {
			out["items"] = toJSONSchema(s.Items)
		}
	case genai.TypeString:
		out["type"] = "string"
	case genai.TypeInteger:
		out["type"] = "integer"
	case genai.TypeNumber:
		out["type"] = "number"
	case genai.TypeBoolean:
		out["type"] = "boolean"
	}

	if s.Description != "" {
		out["description"] = s.Description
	}

	return out
}

func questionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"question": {Type: genai.TypeString},
			"answer":   {Type: genai.TypeString},
		},
		Required: []string{"question", "answer"},
	}
}

func questionListSchema() *genai.Schema {
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: questionSchema(),
	}
}

func challengeListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"title":       {Type: genai.TypeString},
				"description": {Type: genai.TypeString},
				"difficulty":  {Type: genai.TypeString},
				"approach":    {Type: genai.TypeString},
			},
			Required: []string{"title", "description", "difficulty", "approach"},
		},
	}
}

func machineCodingSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":            {Type: genai.TypeString},
			"problemStatement": {Type: genai.TypeString},
			"requirements": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"hints": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"title", "problemStatement", "requirements", "hints"},
	}
}

func resumeAnalysisSchema() *genai.Schema {
	stringList := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"overallScore":    {Type: genai.TypeInteger, Description: "0-100"},
			"summary":         {Type: genai.TypeString},
			"strengths":       stringList,
			"gaps":            stringList,
			"keywordMatches":  stringList,
			"missingKeywords": stringList,
			"suggestions":     stringList,
		},
		Required: []string{"overallScore", "summary", "strengths", "gaps", "keywordMatches", "missingKeywords", "suggestions"},
	}
}

func solutionGuideSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":    {Type: genai.TypeString},
			"approach": {Type: genai.TypeString},
			"steps": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"solution":   {Type: genai.TypeString},
			"complexity": {Type: genai.TypeString},
			"pitfalls": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"title", "approach", "steps", "solution", "complexity", "pitfalls"},
	}
}
