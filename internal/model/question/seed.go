package question

// Seed returns the built-in trainer content for the three phases:
// startup, production/funding, and IPO.
func Seed() map[int]PhaseContent {
	return map[int]PhaseContent{
		1: {
			VideoURL: "https://www.youtube.com/embed/dQw4w9WgXcQ",
			Questions: []Question{
				{
					ID:          "q1",
					Title:       "Placebo Testing",
					Description: "Suppose you are a Biochemical engineer and you discovered a new formula which is a cure for cancer. You have to do a placebo test for that now. You got to select how many people to be tested on?",
					Inputs: []Input{
						{Name: "numPeople", Label: "Number of People", Type: "number", Unit: "people"},
						{Name: "confidence", Label: "Confidence Level", Type: "number", Unit: "%"},
						{Name: "hypothesisTest", Label: "Hypothesis Test Result", Type: "boolean", Options: []string{"Pass", "Fail"}},
					},
				},
				{
					ID:          "q2",
					Title:       "Tablet Dimensions",
					Description: "Design dimensions of the capsule/tablet such that it is easy for adults and children to swallow. Adults can have 500mg and children can have 250mg. The density of the chemical is 36mg/mm³. Humans are comfortable to swallow tablets of radius 40% of their throat diameter. Diameter of adult throat is 25-27mm and children for age 10 is 8-11mm.",
					Inputs: []Input{
						{Name: "adultDiameter", Label: "Adult Tablet Diameter", Type: "number", Unit: "mm"},
						{Name: "adultHeight", Label: "Adult Tablet Height", Type: "number", Unit: "mm"},
						{Name: "childDiameter", Label: "Child Tablet Diameter", Type: "number", Unit: "mm"},
						{Name: "childHeight", Label: "Child Tablet Height", Type: "number", Unit: "mm"},
					},
				},
			},
		},
		2: {
			VideoURL: "https://www.youtube.com/embed/3JZ_D3ELwOQ",
			Questions: []Question{
				{
					ID:          "q1",
					Title:       "Investor Pitch - Series A",
					Description: "Pitch to investors.",
					Inputs: []Input{
						{Name: "equity", Label: "Equity Offered", Type: "number", Unit: "%"},
						{Name: "valuation", Label: "Company Valuation", Type: "number", Unit: "USD"},
					},
				},
			},
		},
		3: {
			VideoURL: "https://www.youtube.com/embed/lTRiuFIWV54",
			Questions: []Question{
				{
					ID:          "q1",
					Title:       "IPO",
					Description: "Go public.",
					Inputs: []Input{
						{Name: "equity", Label: "Public Equity", Type: "number", Unit: "%"},
						{Name: "valuation", Label: "IPO Valuation", Type: "number", Unit: "USD"},
					},
				},
			},
		},
	}
}
