package gemini

import "google.golang.org/genai"

// DefaultPrompt is the fixed instruction sent on every refresh.
const DefaultPrompt = `Search for and analyze the latest reports from this specific URL: https://election.somoynews.tv/results

STRICT AUDIT & EXTRACTION REQUIREMENTS:
1. PRIMARY SOURCE: Use the Somoy News Election portal linked above for real-time seat counts, party leads, and breaking updates for the 13th Bangladesh Parliamentary Election.
2. SECONDARY VERIFICATION: Cross-reference with the Bangladesh Election Commission (EC) and other verified international reports to avoid hallucination.
3. PARTIES: Report on BNP, Jamaat-e-Islami, Jatiya Party, Awami League, and Independents.
4. SCOPE: Provide national summary and featured results for major seats across all divisions (Dhaka, Chittagong, Khulna, Rajshahi, Barisal, Sylhet, Rangpur, Mymensingh).
5. SPECIFIC SEATS: Ensure Bagerhat-1, 2, 3, and 4 results are explicitly searched for and included if available.
6. NO HALLUCINATION: If the source does not have data for a seat yet, mark it as 'Pending' or 'Counting'.
7. DATA STRUCTURE: Return only JSON that strictly follows the provided schema.`

// ResponseSchema mirrors provider.Snapshot minus the fields the service
// fills in (id, sources, timestamps).
func ResponseSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	num := &genai.Schema{Type: genai.TypeNumber}

	standing := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"party":        str,
			"seatsWon":     num,
			"seatsLeading": num,
			"color":        str,
		},
	}

	candidate := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"name":      str,
			"party":     str,
			"votes":     num,
			"symbol":    str,
			"isLeading": {Type: genai.TypeBoolean},
		},
	}

	result := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"constituencyName": str,
			"constituencyNo":   str,
			"status": {
				Type: genai.TypeString,
				Enum: []string{"Published", "Counting", "Pending"},
			},
			"candidates": {Type: genai.TypeArray, Items: candidate},
		},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"totalSeats":       num,
					"resultsPublished": num,
					"partyStandings":   {Type: genai.TypeArray, Items: standing},
				},
			},
			"featuredResults": {Type: genai.TypeArray, Items: result},
			"newsFlash":       str,
		},
	}
}
