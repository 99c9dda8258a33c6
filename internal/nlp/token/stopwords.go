package token

import "sync"

// englishStopwords is the NLTK English stop-word list.
var englishStopwords = []string{
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
	"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
	"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
	"its", "itself", "they", "them", "their", "theirs", "themselves", "what", "which",
	"who", "whom", "this", "that", "that'll", "these", "those", "am", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "having", "do", "does",
	"did", "doing", "a", "an", "the", "and", "but", "if", "or", "because", "as",
	"until", "while", "of", "at", "by", "for", "with", "about", "against", "between",
	"into", "through", "during", "before", "after", "above", "below", "to", "from",
	"up", "down", "in", "out", "on", "off", "over", "under", "again", "further",
	"then", "once", "here", "there", "when", "where", "why", "how", "all", "any",
	"both", "each", "few", "more", "most", "other", "some", "such", "no", "nor",
	"not", "only", "own", "same", "so", "than", "too", "very", "s", "t", "can",
	"will", "just", "don", "don't", "should", "should've", "now", "d", "ll", "m",
	"o", "re", "ve", "y", "ain", "aren", "aren't", "couldn", "couldn't", "didn",
	"didn't", "doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't", "haven",
	"haven't", "isn", "isn't", "ma", "mightn", "mightn't", "mustn", "mustn't",
	"needn", "needn't", "shan", "shan't", "shouldn", "shouldn't", "wasn", "wasn't",
	"weren", "weren't", "won", "won't", "wouldn", "wouldn't",
}

// turkishStopwords holds Turkish function words that carry no topical weight.
var turkishStopwords = []string{
	// conjunctions
	"ve", "veya", "ama", "ile", "ancak", "fakat", "lakin", "yani", "çünkü",
	"eğer", "ise", "hem", "ya", "ki", "de", "da", "dahi", "hatta", "ayrıca",
	// demonstratives and quantifiers
	"bu", "şu", "o", "bir", "her", "hiç", "bazı", "birkaç", "hep", "hepsi", "şey",
	"çok", "az", "daha", "en", "kadar", "böyle", "şöyle",
	// question words and particles
	"ne", "mi", "mı", "mu", "mü", "kim", "nasıl", "neden", "niçin", "nerede",
	"acaba", "belki",
	// postpositions
	"için", "gibi", "göre", "sonra", "önce", "diye", "üzere", "karşı", "rağmen",
	"doğru", "beri", "itibaren", "arasında", "içinde", "dışında", "üzerinde",
	"altında",
	// pronouns
	"ben", "sen", "biz", "siz", "onlar", "benim", "senin", "onun", "bizim",
	"sizin", "onların", "bana", "sana", "ona", "bize", "size", "onlara", "beni",
	"seni", "onu", "bizi", "sizi", "onları",
	// auxiliaries
	"olan", "olarak", "edildi", "yapıldı", "var", "yok", "değil", "bile",
	"sadece", "artık", "henüz",
}

// Stopwords is an immutable set of words dropped during normalization.
// The zero value is an empty set.
type Stopwords struct {
	set map[string]struct{}
}

// NewStopwords builds a set from words.
func NewStopwords(words ...string) Stopwords {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return Stopwords{set: set}
}

// Contains reports whether w is a stop word.
func (s Stopwords) Contains(w string) bool {
	_, ok := s.set[w]
	return ok
}

// Len returns the number of words in the set.
func (s Stopwords) Len() int { return len(s.set) }

// Union returns a new set holding the words of s and other.
func (s Stopwords) Union(other Stopwords) Stopwords {
	set := make(map[string]struct{}, len(s.set)+len(other.set))
	for w := range s.set {
		set[w] = struct{}{}
	}
	for w := range other.set {
		set[w] = struct{}{}
	}
	return Stopwords{set: set}
}

// DefaultStopwords returns the combined English and Turkish set.
// It is built on first use and shared afterwards.
var DefaultStopwords = sync.OnceValue(func() Stopwords {
	return NewStopwords(englishStopwords...).Union(NewStopwords(turkishStopwords...))
})
