package nlp

// lexicon holds the closed-class word lists a RuleEngine tags with.
type lexicon struct {
	subjects map[string]bool // nominative pronouns, tagged PRON + nsubj
	pronouns map[string]bool // remaining pronouns, tagged PRON
	aux      map[string]bool
	verbs    map[string]bool
	closed   map[string]bool // determiners, prepositions, adverbs, conjunctions
	notVerbs map[string]bool // words whose ending looks verbal but is not
	suffixes []string        // verb inflection endings
	minStem  int             // minimum rune length before a suffix counts
	clitics  []string        // contraction tails split into their own token
	elision  bool            // split elided prefixes such as "j'" or "l'"
}

func set(words ...string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}

var lexicons = map[string]*lexicon{
	"en": {
		subjects: set("i", "you", "he", "she", "it", "we", "they", "someone", "somebody", "everyone", "everybody", "nobody", "anyone"),
		pronouns: set("me", "him", "her", "us", "them", "my", "your", "his", "its", "our", "their", "mine", "yours", "ours", "theirs",
			"myself", "yourself", "himself", "herself", "itself", "ourselves", "themselves", "who", "whom", "whose", "what", "there",
			"something", "anything", "nothing", "everything"),
		aux: set("am", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "do", "does", "did",
			"will", "would", "shall", "should", "can", "could", "may", "might", "must", "'s", "'re", "'ve", "'ll", "'d", "'m", "n't", "ca", "wo"),
		verbs: set("say", "said", "says", "go", "goes", "went", "gone", "get", "gets", "got", "make", "makes", "made",
			"know", "knows", "knew", "think", "thinks", "thought", "take", "takes", "took", "see", "sees", "saw", "seen",
			"come", "comes", "came", "want", "wants", "look", "looks", "use", "uses", "find", "finds", "found",
			"give", "gives", "gave", "tell", "tells", "told", "work", "works", "call", "calls", "try", "tries",
			"ask", "asks", "need", "needs", "feel", "feels", "felt", "become", "became", "leave", "leaves", "left",
			"put", "puts", "mean", "means", "meant", "keep", "keeps", "kept", "let", "lets", "begin", "began", "begun",
			"seem", "seems", "help", "helps", "talk", "talks", "turn", "turns", "start", "starts", "show", "shows",
			"hear", "hears", "heard", "play", "plays", "run", "runs", "ran", "move", "moves", "like", "likes",
			"live", "lives", "believe", "believes", "bring", "brings", "brought", "happen", "happens", "write", "wrote",
			"sit", "sat", "stand", "stood", "lose", "lost", "pay", "paid", "meet", "met", "learn", "change",
			"lead", "led", "understand", "understood", "watch", "follow", "stop", "create", "speak", "spoke",
			"read", "spend", "spent", "grow", "grew", "open", "walk", "win", "won", "teach", "taught", "offer",
			"remember", "love", "loves", "consider", "appear", "buy", "bought", "wait", "serve", "die", "send", "sent",
			"expect", "build", "built", "stay", "fall", "fell", "cut", "reach", "kill", "remain", "agree", "decide", "hope"),
		closed: set("the", "a", "an", "this", "that", "these", "those", "and", "or", "but", "so", "because", "if",
			"when", "while", "although", "though", "to", "of", "in", "on", "at", "by", "for", "with", "from", "into",
			"about", "over", "under", "after", "before", "not", "no", "yes", "very", "really", "just", "also", "still",
			"never", "always", "often", "even", "only", "then", "now", "here", "too", "all", "some", "any", "much", "many",
			"more", "most", "well", "again", "already", "maybe", "perhaps", "probably", "actually"),
		notVerbs: set("morning", "evening", "during", "ceiling", "building", "wedding", "sibling", "pudding", "darling",
			"indeed", "hundred", "kindred", "interesting", "amazing", "boring", "exciting"),
		suffixes: []string{"ed", "ing"},
		minStem:  3,
		clitics:  []string{"n't", "'re", "'ve", "'ll", "'m", "'d", "'s"},
	},
	"fr": {
		subjects: set("je", "j'", "tu", "il", "elle", "on", "nous", "vous", "ils", "elles", "c'", "ce"),
		pronouns: set("me", "m'", "te", "t'", "se", "s'", "lui", "leur", "moi", "toi", "eux", "y", "en", "qui", "que", "qu'"),
		aux: set("suis", "es", "est", "sommes", "êtes", "sont", "étais", "était", "étions", "étaient", "serai", "sera", "seront",
			"ai", "as", "a", "avons", "avez", "ont", "avais", "avait", "avaient", "aura", "peux", "peut", "pouvons", "peuvent",
			"veux", "veut", "voulons", "veulent", "dois", "doit", "devons", "doivent", "vais", "va", "allons", "allez", "vont"),
		verbs: set("fait", "faire", "dit", "dire", "voir", "vois", "voit", "sais", "sait", "savoir", "prendre", "pris",
			"venir", "viens", "vient", "aller", "pense", "pensons", "crois", "croit", "aime", "aimons", "parle", "parlons"),
		closed: set("le", "la", "les", "un", "une", "des", "du", "de", "et", "ou", "mais", "donc", "car", "à", "au", "aux",
			"dans", "sur", "sous", "pour", "par", "avec", "sans", "ne", "pas", "plus", "très", "aussi", "bien", "déjà"),
		suffixes: []string{"er", "ons", "ez", "ait", "aient", "é", "ée", "ant"},
		minStem:  3,
		elision:  true,
	},
	"de": {
		subjects: set("ich", "du", "er", "sie", "es", "wir", "ihr", "man"),
		pronouns: set("mich", "dich", "sich", "uns", "euch", "ihn", "ihm", "ihnen", "mir", "dir", "wer", "was"),
		aux: set("bin", "bist", "ist", "sind", "seid", "war", "warst", "waren", "wart", "sein", "habe", "hast", "hat",
			"haben", "habt", "hatte", "hatten", "werde", "wirst", "wird", "werden", "wurde", "wurden", "kann", "kannst",
			"können", "muss", "musst", "müssen", "will", "willst", "wollen", "soll", "sollen", "darf", "dürfen", "mag", "möchte"),
		verbs: set("geht", "gehen", "ging", "kommt", "kommen", "kam", "sagt", "sagen", "sagte", "macht", "machen", "machte",
			"sieht", "sehen", "sah", "weiß", "wissen", "denke", "denkt", "glaube", "glaubt", "gibt", "geben", "nimmt", "nehmen"),
		closed: set("der", "die", "das", "den", "dem", "des", "ein", "eine", "einen", "einem", "und", "oder", "aber",
			"weil", "dass", "wenn", "als", "in", "im", "an", "am", "auf", "mit", "von", "zu", "zum", "zur", "für",
			"nicht", "kein", "sehr", "auch", "noch", "schon", "nur", "dann", "jetzt", "hier"),
		suffixes: []string{"te", "ten", "tet"},
		minStem:  3,
	},
	"es": {
		subjects: set("yo", "tú", "tu", "él", "ella", "usted", "nosotros", "nosotras", "vosotros", "vosotras", "ellos", "ellas", "ustedes"),
		pronouns: set("me", "te", "se", "nos", "os", "le", "les", "mí", "ti", "quien", "que"),
		aux: set("soy", "eres", "es", "somos", "sois", "son", "era", "eras", "éramos", "eran", "fue", "fueron",
			"estoy", "estás", "está", "estamos", "están", "estaba", "he", "has", "ha", "hemos", "han", "había",
			"puedo", "puede", "podemos", "pueden", "voy", "vas", "va", "vamos", "van", "debo", "debe", "deben"),
		verbs: set("dice", "dijo", "hace", "hizo", "tiene", "tengo", "tienen", "quiero", "quiere", "sé", "sabe", "creo", "cree"),
		closed: set("el", "la", "los", "las", "un", "una", "unos", "unas", "y", "o", "pero", "porque", "si", "cuando",
			"de", "del", "a", "al", "en", "con", "por", "para", "sin", "sobre", "no", "muy", "también", "ya", "aquí"),
		suffixes: []string{"ar", "er", "ir", "ando", "iendo", "ado", "ido", "aba", "aron", "ieron"},
		minStem:  3,
	},
	"zh": {
		subjects: set("我", "你", "您", "他", "她", "它", "我们", "你们", "他们", "她们", "它们", "大家", "咱们", "自己"),
		pronouns: set("这", "那", "这个", "那个", "什么", "谁"),
		aux:      set("是", "有", "会", "能", "要", "可以", "应该", "得", "在", "没有", "已经"),
		verbs: set("说", "去", "来", "做", "看", "想", "知道", "觉得", "认为", "喜欢", "需要", "开始", "决定", "回来",
			"出去", "告诉", "发现", "希望", "相信", "听", "走", "吃", "买", "学习", "工作"),
		closed: set("的", "了", "着", "过", "和", "与", "但是", "因为", "所以", "如果", "虽然", "也", "都", "很", "就", "还"),
	},
	"ja": {
		subjects: set("私", "僕", "俺", "彼", "彼女", "あなた", "私たち", "僕たち", "彼ら", "君", "みんな"),
		pronouns: set("これ", "それ", "あれ", "誰", "何"),
		aux:      set("です", "でした", "ます", "ました", "だ", "だった", "いる", "ある", "なる", "できる"),
		verbs:    set("する", "した", "して", "行く", "来る", "言う", "思う", "見る", "知る", "分かる", "食べる"),
		closed:   set("は", "が", "を", "に", "で", "と", "の", "も", "から", "まで", "けど", "しかし"),
	},
}

// cjkMaxWord bounds longest-match lookups in unspaced scripts.
const cjkMaxWord = 4
