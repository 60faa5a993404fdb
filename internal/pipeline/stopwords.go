package pipeline

// stopwords mixes common Indonesian and English function words with the
// domain noise words "page" and "pdf". Tokens in this set never become
// keywords.
var stopwords = map[string]struct{}{
	// Indonesian
	"dan": {}, "atau": {}, "yang": {}, "untuk": {}, "dengan": {}, "dari": {},
	"ke": {}, "di": {}, "pada": {}, "dalam": {}, "oleh": {}, "karena": {},
	"sebagai": {}, "adalah": {}, "akan": {}, "dapat": {}, "telah": {},
	"tidak": {}, "ada": {}, "ini": {}, "itu": {}, "juga": {}, "hanya": {},
	"sudah": {}, "masih": {}, "lebih": {}, "saja": {}, "bisa": {}, "jika": {},
	"bila": {}, "maka": {}, "sehingga": {}, "namun": {}, "tetapi": {},
	"bahwa": {}, "dimana": {}, "bagaimana": {}, "kapan": {}, "siapa": {},
	"mengapa": {}, "apa": {},
	// English
	"the": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "a": {}, "an": {},
	"as": {}, "is": {}, "was": {}, "are": {}, "were": {}, "be": {},
	"been": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"may": {}, "might": {}, "must": {}, "can": {}, "shall": {},
	// domain noise
	"page": {}, "pdf": {},
}
