package analysis

var stringArray = map[string]interface{}{
	"type":  "array",
	"items": map[string]interface{}{"type": "string"},
}

var score = map[string]interface{}{
	"type":    "number",
	"minimum": 0,
	"maximum": 100,
}

var ratio = map[string]interface{}{
	"type":    "string",
	"pattern": `^\s*\d+\s*/\s*\d+\s*$`,
}

var resumeSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"skills":      stringArray,
		"experience":  map[string]interface{}{"type": "string"},
		"education":   map[string]interface{}{"type": "string"},
		"atsScore":    score,
		"strengths":   stringArray,
		"weaknesses":  stringArray,
		"suggestions": map[string]interface{}{"type": "string"},
	},
	"required": []interface{}{"skills", "experience", "education", "atsScore", "strengths", "weaknesses", "suggestions"},
}

var jobMatchSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"matchPercentage": score,
		"skillsMatch":     ratio,
		"experienceMatch": ratio,
		"educationMatch":  map[string]interface{}{"type": "boolean"},
		"missingSkills":   stringArray,
	},
	"required": []interface{}{"matchPercentage", "skillsMatch", "experienceMatch", "educationMatch", "missingSkills"},
}

var interviewSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"general":    stringArray,
		"technical":  stringArray,
		"behavioral": stringArray,
	},
	"required": []interface{}{"general", "technical", "behavioral"},
}

var skillGapSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"missingSkills": stringArray,
		"priority": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"high", "medium", "low"},
		},
		"recommendations": map[string]interface{}{"type": "string"},
	},
	"required": []interface{}{"missingSkills", "priority", "recommendations"},
}
