package tasks

// wordFamily maps a stem to its derived forms. The word-formation generator
// scans block text for any derived form and asks for it from the stem.
type wordFamily struct {
	Base  string
	Forms []string
}

var wordFamilies = []wordFamily{
	{"able", []string{"ability", "unable", "disabled", "ably"}},
	{"act", []string{"action", "active", "activity", "actor", "reaction"}},
	{"agree", []string{"agreement", "disagree", "agreeable", "disagreement"}},
	{"appear", []string{"appearance", "disappear", "apparently", "apparent"}},
	{"beauty", []string{"beautiful", "beautifully", "beautify"}},
	{"believe", []string{"belief", "believable", "unbelievable"}},
	{"care", []string{"careful", "careless", "carefully", "carelessness"}},
	{"comfort", []string{"comfortable", "uncomfortable", "comfortably", "discomfort"}},
	{"create", []string{"creation", "creative", "creativity", "creator"}},
	{"danger", []string{"dangerous", "dangerously", "endanger"}},
	{"decide", []string{"decision", "decisive", "undecided"}},
	{"depend", []string{"dependent", "independent", "dependence", "independence"}},
	{"differ", []string{"different", "difference", "differently"}},
	{"employ", []string{"employer", "employee", "employment", "unemployed", "unemployment"}},
	{"expect", []string{"expectation", "unexpected", "unexpectedly"}},
	{"explain", []string{"explanation", "unexplained", "explanatory"}},
	{"friend", []string{"friendly", "friendship", "unfriendly"}},
	{"happy", []string{"happiness", "unhappy", "happily", "unhappiness"}},
	{"help", []string{"helpful", "helpless", "helpfully", "helplessly"}},
	{"hope", []string{"hopeful", "hopeless", "hopefully", "hopelessly"}},
	{"imagine", []string{"imagination", "imaginary", "unimaginable", "imaginative"}},
	{"know", []string{"knowledge", "known", "unknown", "knowledgeable"}},
	{"like", []string{"likely", "unlikely", "dislike", "likelihood"}},
	{"luck", []string{"lucky", "unlucky", "luckily", "unluckily"}},
	{"nation", []string{"national", "international", "nationality"}},
	{"pain", []string{"painful", "painless", "painfully"}},
	{"patient", []string{"patience", "impatient", "patiently", "impatience"}},
	{"person", []string{"personal", "personally", "personality", "impersonal"}},
	{"possible", []string{"possibility", "impossible", "possibly", "impossibility"}},
	{"real", []string{"reality", "really", "realistic", "unrealistic", "realise"}},
	{"succeed", []string{"success", "successful", "unsuccessful", "successfully"}},
	{"understand", []string{"understanding", "misunderstand", "misunderstanding", "understandable"}},
	{"use", []string{"useful", "useless", "usefully", "usage", "user"}},
	{"wonder", []string{"wonderful", "wonderfully"}},
}

// fallbackFormationItems fills the word-formation task when the block text
// yields too few family matches.
var fallbackFormationItems = []WordFormationItem{
	{Sentence: "Her ___ (KIND) surprised everyone in the village.", BaseWord: "kind", Answer: "kindness", Hint: "noun"},
	{Sentence: "The journey was ___ (COMFORT) but short.", BaseWord: "comfort", Answer: "uncomfortable", Hint: "negative adjective"},
	{Sentence: "He answered all the questions ___ (CORRECT).", BaseWord: "correct", Answer: "correctly", Hint: "adverb"},
	{Sentence: "It was an ___ (FORGET) evening for all of us.", BaseWord: "forget", Answer: "unforgettable", Hint: "adjective"},
	{Sentence: "She spoke with great ___ (CONFIDENT).", BaseWord: "confident", Answer: "confidence", Hint: "noun"},
	{Sentence: "The results were quite ___ (EXPECT).", BaseWord: "expect", Answer: "unexpected", Hint: "negative adjective"},
	{Sentence: "They treated their guests with real ___ (GENEROUS).", BaseWord: "generous", Answer: "generosity", Hint: "noun"},
	{Sentence: "The instructions were ___ (HELP) written.", BaseWord: "help", Answer: "helpfully", Hint: "adverb"},
}
