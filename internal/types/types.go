package types

// PrepKitInput represents the input for generating a full prep kit
type PrepKitInput struct {
	JobRole        string `json:"jobRole"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// RandomizedPrepInput represents the input for a randomized practice set
type RandomizedPrepInput struct {
	JobRole    string `json:"jobRole"`
	Difficulty string `json:"difficulty,omitempty"` // "easy", "medium", "hard"; blank lets the model vary
}

// SolutionInput represents the input for a machine coding solution guide
type SolutionInput struct {
	Title            string `json:"title"`
	ProblemStatement string `json:"problemStatement"`
	JobRole          string `json:"jobRole"`
}

// InsightsInput represents the input for grounded company research
type InsightsInput struct {
	Company string `json:"company"`
	JobRole string `json:"jobRole"`
}

// ResumeAnalysisInput represents the input for analyzing a resume against a role
type ResumeAnalysisInput struct {
	ResumeText     string `json:"resumeText"`
	JobRole        string `json:"jobRole"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// InterviewQuestion is a single question with a model answer
type InterviewQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CodingChallenge is a practice exercise; for content roles this is a
// writing or editorial exercise rather than code
type CodingChallenge struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Approach    string `json:"approach"`
}

// MachineCodingProblem is a timed build-it round (or a production brief for
// content roles)
type MachineCodingProblem struct {
	Title            string   `json:"title"`
	ProblemStatement string   `json:"problemStatement"`
	Requirements     []string `json:"requirements"`
	Hints            []string `json:"hints"`
}

// PrepKit is the full preparation bundle for a role
type PrepKit struct {
	JobRole          string               `json:"jobRole"`
	RoleCategory     RoleCategory         `json:"roleCategory"`
	GeneralQuestions []InterviewQuestion  `json:"generalQuestions"`
	RoleQuestions    []InterviewQuestion  `json:"roleQuestions"`
	Challenges       []CodingChallenge    `json:"challenges"`
	MachineCoding    MachineCodingProblem `json:"machineCoding"`
}

// RandomizedPrepSet is a difficulty-tagged practice set assembled from four
// separate generation rounds
type RandomizedPrepSet struct {
	JobRole       string               `json:"jobRole"`
	RoleCategory  RoleCategory         `json:"roleCategory"`
	Difficulty    string               `json:"difficulty"`
	Questions     []InterviewQuestion  `json:"questions"`
	SystemDesign  []InterviewQuestion  `json:"systemDesign"`
	Challenges    []CodingChallenge    `json:"challenges"`
	MachineCoding MachineCodingProblem `json:"machineCoding"`
}

// SolutionGuide is a worked solution to a machine coding problem
type SolutionGuide struct {
	Title      string   `json:"title"`
	Approach   string   `json:"approach"`
	Steps      []string `json:"steps"`
	Solution   string   `json:"solution"`
	Complexity string   `json:"complexity"`
	Pitfalls   []string `json:"pitfalls"`
}

// ResumeAnalysis is the scored assessment of a resume for a target role
type ResumeAnalysis struct {
	OverallScore    int      `json:"overallScore"` // 0-100
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	KeywordMatches  []string `json:"keywordMatches"`  // role keywords present in the resume
	MissingKeywords []string `json:"missingKeywords"` // role keywords the resume lacks
	Suggestions     []string `json:"suggestions"`
}

// CitationSource is a web source backing a grounded answer
type CitationSource struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// CompanyInsights is grounded research output with its citations
type CompanyInsights struct {
	Company string           `json:"company"`
	Content string           `json:"content"`
	Sources []CitationSource `json:"sources"`
}
