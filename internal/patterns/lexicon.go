package patterns

// KeywordCategory is a weighted group of scam keywords
type KeywordCategory struct {
	Name     string
	Weight   float64
	Keywords []string
}

// Lexicon is the ordered set of keyword categories used for text scoring
type Lexicon struct {
	categories  []KeywordCategory
	totalWeight float64
}

// NewLexicon builds a lexicon, copying the categories so the caller cannot mutate it
func NewLexicon(categories []KeywordCategory) *Lexicon {
	lx := &Lexicon{categories: make([]KeywordCategory, len(categories))}
	for i, c := range categories {
		kw := make([]string, len(c.Keywords))
		copy(kw, c.Keywords)
		lx.categories[i] = KeywordCategory{Name: c.Name, Weight: c.Weight, Keywords: kw}
		lx.totalWeight += c.Weight
	}
	return lx
}

// DefaultLexicon returns the built-in scam lexicon
func DefaultLexicon() *Lexicon {
	return NewLexicon([]KeywordCategory{
		{
			Name:   "Lottery & Fake Rewards",
			Weight: 1.0,
			Keywords: []string{
				"congratulations", "lottery", "winner", "won", "prize", "reward",
				"lucky", "jackpot", "gift", "cashback", "kbc",
			},
		},
		{
			Name:   "Phishing & Links",
			Weight: 0.9,
			Keywords: []string{
				"click here", "click", "claim your", "link", "bit.ly", "tinyurl",
				"http://", "https://", "www.", "tap here", "download",
			},
		},
		{
			Name:   "Urgency & Threats",
			Weight: 0.4,
			Keywords: []string{
				"urgent", "immediately", "blocked", "suspend", "expire",
				"last chance", "action required", "within 24 hours", "hurry", "warning",
			},
		},
		{
			Name:   "Sensitive Information Requests",
			Weight: 0.5,
			Keywords: []string{
				"otp", "password", "cvv", "card number", "aadhaar", "pan card",
				"bank details", "kyc", "upi pin", "share your pin",
			},
		},
		{
			Name:   "Impersonation",
			Weight: 0.3,
			Keywords: []string{
				"customer care", "helpline", "rbi", "government", "income tax",
				"police", "official", "support team", "bank manager",
			},
		},
	})
}

// Categories returns the categories in declaration order
func (lx *Lexicon) Categories() []KeywordCategory {
	return lx.categories
}

// TotalWeight is the sum of every category weight
func (lx *Lexicon) TotalWeight() float64 {
	return lx.totalWeight
}
