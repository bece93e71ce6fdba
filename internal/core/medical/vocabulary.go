package medical

// Vocabulary is a keyword resource for content gating. The same scoring logic
// runs against different vocabularies: a broad lab-report list for uploads and
// a smaller conversational list for chat questions. MinKeywords is the
// call-site threshold on raw keyword matches.
type Vocabulary struct {
	Name        string
	Terms       []string
	MinKeywords int
}

// ReportVocabulary covers lab panel names, units and result qualifiers.
// Intentionally permissive: two keyword hits are enough, so terse but
// legitimate reports are not rejected.
var ReportVocabulary = &Vocabulary{
	Name:        "report",
	MinKeywords: 2,
	Terms: []string{
		// Blood test terms
		"hemoglobin", "hematocrit", "rbc", "wbc", "platelet", "mcv", "mch", "mchc",
		"neutrophil", "lymphocyte", "monocyte", "eosinophil", "basophil",

		// Liver function
		"alt", "ast", "alp", "bilirubin", "total bilirubin", "direct bilirubin",
		"indirect bilirubin", "ggt", "ldh", "albumin", "globulin",

		// Kidney function
		"creatinine", "bun", "urea", "egfr", "gfr", "protein",

		// Metabolic panel
		"glucose", "hba1c", "cholesterol", "hdl", "ldl", "triglycerides",
		"sodium", "potassium", "chloride", "co2", "calcium", "phosphorus",

		// Other common tests
		"tsh", "t3", "t4", "vitamin d", "b12", "folate", "iron", "ferritin",
		"crp", "esr", "psa", "cea", "ca125", "ca19-9",

		// Haemogram / urinalysis terms
		"haemogram", "cbc", "neutrophils", "lymphocytes", "eosinophils",
		"monocytes", "basophills", "hct", "rdw", "smear", "normocytic",
		"normochromic", "adequate", "parasite", "jaffe", "cmia", "hexokinase",
		"g-6-pdh", "hpf", "pus cells", "red blood cells", "epithelial cells",
		"casts", "crystals", "trichomonas", "bacteria", "budding yeast",
		"urine", "sp. gravity", "bile salt", "bile pigment", "ketones",
		"microscopic examination", "physical examination", "chemical examination",

		// General medical terms
		"patient", "doctor", "hospital", "clinic", "diagnosis", "treatment",
		"prescription", "normal", "abnormal", "elevated", "decreased",
		"reference range", "units", "mg/dl", "g/dl", "iu/ml", "ng/ml",
		"mmol/l", "micromol/l", "test results", "laboratory", "pathology",
	},
}

// ChatVocabulary gates free-text questions before they reach the model. A
// single hit is enough; the point is only to redirect clearly non-medical
// prompts without spending a model call.
var ChatVocabulary = &Vocabulary{
	Name:        "chat",
	MinKeywords: 1,
	Terms: []string{
		"blood", "test", "report", "result", "lab", "doctor", "hospital",
		"clinic", "medical", "medicine", "medication", "dose", "prescription",
		"symptom", "pain", "fever", "diagnosis", "treatment", "health",
		"disease", "condition", "infection", "allergy", "diet", "vitamin",
		"hemoglobin", "glucose", "sugar", "cholesterol", "creatinine",
		"kidney", "liver", "thyroid", "heart", "pressure", "diabetes",
		"anemia", "range", "normal", "abnormal", "level", "count",
	},
}
