package vocab

// Default returns the built-in tables. Each call returns fresh slices.
func Default() Vocabulary {
	return Vocabulary{
		Skills: []string{
			// languages
			"python", "java", "javascript", "typescript", "c++", "c#", "c", "go",
			"rust", "ruby", "php", "swift", "kotlin", "scala", "r", "matlab",
			"perl", "shell", "bash", "sql", "html", "css",
			// frameworks and libraries
			"react", "angular", "vue", "node.js", "express", "django", "flask",
			"fastapi", "spring", "rails", "laravel", "next.js", "svelte",
			"tensorflow", "pytorch", "keras", "scikit-learn", "pandas", "numpy",
			"opencv", "matplotlib", "seaborn",
			// cloud and devops
			"aws", "azure", "gcp", "docker", "kubernetes", "terraform",
			"jenkins", "github actions", "ci/cd", "linux", "nginx",
			// data and ml
			"machine learning", "deep learning", "nlp", "computer vision",
			"data science", "data analysis", "data engineering", "big data",
			"spark", "hadoop", "kafka", "airflow", "etl",
			"natural language processing", "reinforcement learning",
			// databases
			"mysql", "postgresql", "mongodb", "redis", "elasticsearch",
			"sqlite", "firebase", "dynamodb", "cassandra",
			// tools
			"git", "jira", "figma", "postman", "rest api", "graphql",
			"microservices", "agile", "scrum", "power bi", "tableau",
			"excel", "blockchain", "iot", "cybersecurity",
		},
		Domains: []Rule{
			{Name: "ai/ml", Keywords: []string{"machine learning", "deep learning", "nlp", "computer vision", "tensorflow", "pytorch", "scikit-learn", "data science"}},
			{Name: "web development", Keywords: []string{"react", "angular", "vue", "node.js", "django", "flask", "fastapi", "html", "css", "javascript"}},
			{Name: "data engineering", Keywords: []string{"spark", "hadoop", "kafka", "airflow", "etl", "big data", "data engineering"}},
			{Name: "devops", Keywords: []string{"docker", "kubernetes", "terraform", "jenkins", "ci/cd", "aws", "azure", "gcp"}},
			{Name: "mobile development", Keywords: []string{"swift", "kotlin", "react native", "flutter"}},
			{Name: "cybersecurity", Keywords: []string{"cybersecurity", "penetration testing", "siem"}},
			{Name: "backend development", Keywords: []string{"java", "python", "go", "rust", "c++", "microservices", "rest api", "graphql"}},
		},
		// Checked top to bottom; the first level with a hit wins.
		ResumeExperience: []Rule{
			{Name: "Senior", Keywords: []string{"senior", "lead", "principal", "staff", "architect", "8+ years", "10+ years", "manager"}},
			{Name: "Mid", Keywords: []string{"mid", "3+ years", "4+ years", "5+ years", "intermediate"}},
			{Name: "Entry", Keywords: []string{"intern", "junior", "entry", "fresher", "graduate", "0-1 year", "0-2 years", "trainee"}},
		},
		Roles: []Rule{
			{Name: "software engineer", Keywords: []string{"software engineer", "software developer", "sde"}},
			{Name: "data scientist", Keywords: []string{"data scientist", "ml engineer", "ai engineer"}},
			{Name: "frontend developer", Keywords: []string{"frontend", "front-end", "react developer"}},
			{Name: "backend developer", Keywords: []string{"backend", "back-end", "server-side"}},
			{Name: "full stack developer", Keywords: []string{"full stack", "fullstack"}},
			{Name: "devops engineer", Keywords: []string{"devops", "site reliability", "sre"}},
			{Name: "data analyst", Keywords: []string{"data analyst", "business analyst"}},
			{Name: "product manager", Keywords: []string{"product manager", "product owner"}},
		},
		EntryRoleKeywords:  []string{"intern", "junior", "trainee", "fresher"},
		SeniorRoleKeywords: []string{"senior", "lead", "principal", "staff"},
		ReputationTiers: []Tier{
			{Score: 95, Keywords: []string{
				"iit", "iisc", "isro", "drdo", "google", "microsoft", "apple", "meta",
				"amazon", "nvidia", "openai", "deepmind",
			}},
			{Score: 85, Keywords: []string{
				"ibm", "oracle", "sap", "intel", "cisco", "adobe", "salesforce",
				"samsung", "sony", "tcs", "infosys", "wipro", "hcl", "accenture",
				"deloitte", "ey", "kpmg", "pwc", "mckinsey", "bcg", "bain",
				"goldman sachs", "morgan stanley", "jpmorgan",
			}},
			{Score: 75, Keywords: []string{
				"startup", "funded", "ycombinator", "y combinator", "sequoia",
				"series a", "series b", "backed", "venture",
			}},
		},
		DefaultReputation: 60,
		Weights:           Weights{Skill: 50, Domain: 30, Experience: 20},
	}
}
