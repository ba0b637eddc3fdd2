package textutil

// English stop-list applied before frequency counting: articles, pronouns,
// prepositions, auxiliaries, the most common verbs and politeness tokens.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range stopwordList {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether the (already lowercased) token is on the
// stop-list.
func IsStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}

var stopwordList = []string{
	// articles, determiners, conjunctions
	"the", "and", "but", "for", "nor", "yet", "this", "that", "these", "those",
	"some", "any", "each", "every", "either", "neither", "both", "all", "few",
	"many", "much", "more", "most", "other", "another", "such", "what", "which",
	"whose", "whatever", "whichever",
	// pronouns
	"you", "she", "him", "her", "his", "hers", "its", "our", "ours", "your",
	"yours", "they", "them", "their", "theirs", "who", "whom", "himself",
	"herself", "itself", "myself", "yourself", "ourselves", "themselves",
	"anyone", "anybody", "anything", "someone", "somebody", "something",
	"everyone", "everybody", "everything", "nobody", "nothing", "one",
	// prepositions and particles
	"about", "above", "across", "after", "against", "along", "among", "around",
	"before", "behind", "below", "beneath", "beside", "between", "beyond",
	"down", "during", "except", "from", "inside", "into", "near", "off",
	"onto", "out", "outside", "over", "past", "since", "through", "throughout",
	"till", "toward", "towards", "under", "until", "upon", "via", "with",
	"within", "without",
	// auxiliaries and modals
	"are", "was", "were", "been", "being", "have", "has", "had", "having",
	"does", "did", "doing", "done", "will", "would", "shall", "should", "can",
	"could", "may", "might", "must", "ought", "need", "dare", "used",
	"isn't", "aren't", "wasn't", "weren't", "hasn't", "haven't", "hadn't",
	"doesn't", "don't", "didn't", "won't", "wouldn't", "shan't", "shouldn't",
	"can't", "cannot", "couldn't", "mustn't", "mightn't", "needn't",
	// common verbs
	"said", "say", "says", "saying", "get", "got", "gets", "getting", "go",
	"goes", "went", "gone", "going", "come", "came", "comes", "coming", "make",
	"made", "makes", "making", "take", "took", "taken", "takes", "taking",
	"see", "saw", "seen", "sees", "know", "knew", "known", "knows", "think",
	"thought", "thinks", "look", "looked", "looks", "want", "wanted", "give",
	"gave", "given", "tell", "told", "put", "let", "ask", "asked", "seem",
	"seemed", "felt", "feel", "keep", "kept", "begin", "began", "begun",
	// adverbs, fillers, politeness
	"not", "now", "then", "there", "here", "when", "where", "why", "how",
	"again", "once", "only", "just", "very", "too", "also", "well", "even",
	"still", "back", "away", "ever", "never", "always", "often", "sometimes",
	"soon", "quite", "rather", "really", "almost", "enough", "indeed",
	"perhaps", "maybe", "please", "thanks", "thank", "yes", "dear", "sir",
	"madam", "mrs", "miss",
}
