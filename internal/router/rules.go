package router

import (
	"strings"

	"github.com/Domenick1991/farmstay/internal/domain"
	"github.com/Domenick1991/farmstay/internal/extract"
)

// KeywordRule maps a message to a key. It fires when any Contains substring,
// any whole Words token, or all AllOf substrings are present, and none of Without is.
type KeywordRule struct {
	Key      string   `yaml:"key"`
	Contains []string `yaml:"contains"`
	Words    []string `yaml:"words"`
	AllOf    []string `yaml:"all_of"`
	Without  []string `yaml:"without"`
}

// Topic is a data-driven info trigger set. Higher priority wins, ties go to the longer trigger.
type Topic struct {
	Key      string   `yaml:"key"`
	Priority int      `yaml:"priority"`
	Triggers []string `yaml:"triggers"`
}

// ExperienceRule names the stems that turn a booking request into a wellness, meal or
// package booking.
type ExperienceRule struct {
	Type  domain.ReservationType `yaml:"type"`
	Stems []string               `yaml:"stems"`
}

type roomAlias struct {
	id    string
	alias string
}

// Rules is the classifier vocabulary. A Rules value is never mutated after construction;
// WithTopics returns a copy.
type Rules struct {
	BookingTokens  []string
	BookingPhrases []string
	RoomWords      []string
	RoomStems      []string
	TableWords     []string
	TableStems     []string

	ResetPhrases []string

	// Experiences are checked in order, the first matching rule wins.
	Experiences     []ExperienceRule
	ExperienceVerbs []string

	Topics       []Topic
	InfoRules    []KeywordRule
	ProductRules []KeywordRule
	SoftSellKeys []string

	rooms []roomAlias
}

func DefaultRules() *Rules {
	r := &Rules{
		BookingTokens: []string{
			"rezerv", "rezev", "rezer", "rezeriv", "rezerver", "rezerveru", "rezr", "rezrv",
			"rezrvat", "rezerveir", "reserv", "reservier", "book", "buking", "booking", "bukng",
		},
		BookingPhrases: []string{
			"rezerviram sobo", "rezerviral sobo", "rezervirala sobo", "rezervacija sobe",
			"rezerviram mizo", "rezerviral mizo", "rezervirala mizo", "rezervacija mize",
			"ali lahko rezerviram sobo", "ali lahko rezerviram mizo",
		},
		RoomWords: []string{"soba", "sobe", "sobo", "room", "rum", "zimmer", "zimmern", "camera"},
		RoomStems: []string{"camer", "accom", "nocit", "nočit", "nočitev", "nocitev", "night"},
		TableWords: []string{"miza", "mize", "mizo", "table", "tisch"},
		TableStems: []string{
			"miz", "tabl", "tabel", "tble", "tablle", "tafel", "koslo", "kosilo",
			"vecerj", "veceja", "vecher", "dinner", "lunch",
		},

		ResetPhrases: []string{
			"zmotil sem se", "zmotila sem se", "začni znova", "zacni znova", "od začetka", "od zacetka",
			"konec rezervacije", "reset", "stop", "prekini", "cancel", "nehaj", "pustimo",
		},

		Experiences: []ExperienceRule{
			{Type: domain.ReservationTypePackage, Stems: []string{"paket", "package", "pobeg"}},
			{Type: domain.ReservationTypeMeal, Stems: []string{"degust", "kulinar", "poslovni zajtrk", "poslovno kosilo"}},
			{Type: domain.ReservationTypeWellness, Stems: []string{"wellness", "welnes", "wellnes", "savn", "sauna", "jacuzz", "whirlpool"}},
		},
		ExperienceVerbs: []string{"želim", "zelim", "rad bi", "rada bi", "radi bi", "prijavi", "would like"},

		InfoRules:    defaultInfoRules(),
		ProductRules: defaultProductRules(),
		SoftSellKeys: []string{"sobe", "sobe_info", "vecerja", "cena_sobe", "min_nocitve", "kapaciteta_mize"},
	}
	for _, room := range domain.DefaultCatalog().Rooms {
		for _, a := range room.Aliases {
			r.rooms = append(r.rooms, roomAlias{id: room.ID, alias: a})
		}
	}
	return r
}

func defaultInfoRules() []KeywordRule {
	return []KeywordRule{
		{
			Key:      "pozdrav",
			Words:    []string{"zdravo", "živjo", "pozdrav", "pozdravljeni", "hey", "hello"},
			Contains: []string{"dober dan", "dober večer", "dobro jutro"},
		},
		{Key: "kdo_si", Contains: []string{"kdo si", "kdo ste", "predstavi se"}},
		{Key: "odpiralni_cas", Contains: []string{
			"odpiralni", "kdaj ste odprti", "delovni čas", "odprti", "odprite", "kdaj odprete",
			"ob kateri uri odprete", "zadnji prihod",
		}},
		{Key: "prazniki", Contains: []string{"praznik"}},
		{Key: "rezervacija_vnaprej", Contains: []string{
			"rezervirati vnaprej", "brez rezervacije", "ali moram rezervirati", "rezervacija vnaprej",
		}},
		{Key: "zajtrk", Contains: []string{"zajtrk"}, Without: []string{"večerj"}},
		{Key: "vecerja", Contains: []string{"večerja", "vecerja", "cena večerje", "cena vecerje", "večerjo"}},
		{Key: "cena_sobe", Contains: []string{
			"cena sobe", "cenik", "koliko stane noč", "nočitev", "nocitev", "soba za 2", "soba za dve",
			"za 2 osebi", "za dve osebi", "vključeno v ceno", "v ceno sobe",
		}},
		{Key: "sobe", Contains: []string{
			"koliko sob", "katere sobe", "kakšne sobe", "družinska soba", "družinsko sobo", "balkon",
			"koliko oseb v sobi", "koliko oseb v sobo", "koliko oseb gre v eno sobo", "kapaciteta sobe",
			"najboljša soba", "najboljša za družino",
		}},
		{Key: "sobe", AllOf: []string{"soba", "družin"}},
		{Key: "klima", Contains: []string{"klima", "klimatiz"}},
		{Key: "wifi", Contains: []string{"wifi", "wi-fi", "internet"}},
		{Key: "prijava_odjava", Contains: []string{"prijava", "odjava", "check in", "check out"}},
		{Key: "parking", Contains: []string{"parkir", "parking"}},
		{Key: "zivali_kmetija", Contains: []string{
			"katere živali", "kakšne živali", "zivali imate", "živali na kmetiji", "živali na domačiji",
			"otroci vidijo živali",
		}},
		{Key: "zivali", Contains: []string{
			"psom", "mačk", "ljubljenč", "pripeljem", "s sabo", "dovolite živali", "sprejemate živali",
		}, Words: []string{"pes"}},
		{Key: "kontakt", Contains: []string{
			"telefon", "številka", "stevilka", "gsm", "mobitel", "mobile", "phone",
			"email", "e-mail", "epošta", "e-pošta",
		}},
		{Key: "placilo", Contains: []string{"plačilo", "plačam", "placam", "gotovina", "kartic"}},
		{Key: "min_nocitve", Contains: []string{"minimal", "min nočit", "najmanj noč", "min noce"}},
		{Key: "jedilnik", Contains: []string{
			"jedilnik", "menij", "menu", "koslo", "kaj ponujate", "kaj strežete", "degustacij",
			"koliko hodov", "kosilo",
		}},
		{Key: "alergije", Contains: []string{"alergij", "alergik", "gluten", "lakto", "vegan", "vegetar"}},
		{Key: "lokacija", Contains: []string{"nadmorski", "višina", "kje ste", "naslov"}},
		{Key: "kmetija", Contains: []string{"zemlje", "krav", "kmetij"}},
		{Key: "gibanica", Contains: []string{"gibanica"}},
	}
}

func defaultProductRules() []KeywordRule {
	return []KeywordRule{
		{Key: "marmelada", Contains: []string{"marmelad", "džem", "dzem", "jagod", "malin"}},
		{Key: "liker", Contains: []string{"liker", "žgan", "zgan", "borovnič", "orehov", "tepk"}},
		{Key: "gibanica", Contains: []string{"gibanica"}},
		{Key: "bunka", Contains: []string{"bunka", "bunko", "bunke", "salam", "klobas"}},
		{Key: "izdelki_splosno", Contains: []string{"izdelek", "izdelk", "trgovin", "katalog", "prodajate", "naroč", "naroc"}},
	}
}

// WithTopics returns a copy of r that also consults topics.
func (r *Rules) WithTopics(topics []Topic) *Rules {
	cp := *r
	cp.Topics = append(append([]Topic(nil), r.Topics...), topics...)
	return &cp
}

// InfoKeys lists every key the rules can answer with, topics first.
func (r *Rules) InfoKeys() []string {
	seen := map[string]bool{}
	var keys []string
	add := func(k string) {
		if k != "" && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, t := range r.Topics {
		add(t.Key)
	}
	for _, rule := range r.InfoRules {
		add(rule.Key)
	}
	return keys
}

type signals struct {
	booking bool
	room    bool
	table   bool
}

func (r *Rules) bookingSignals(t string, toks []string) signals {
	var s signals
	s.booking = containsAny(t, r.BookingTokens) || containsAny(t, r.BookingPhrases)
	s.room = anyToken(toks, r.RoomWords) || containsAny(t, r.RoomStems)
	s.table = anyToken(toks, r.TableWords) || containsAny(t, r.TableStems)
	return s
}

// Experience returns the wellness, meal or package type a booking request asks for, or
// ReservationTypeUnset when the message is not such a request.
func (r *Rules) Experience(text string) domain.ReservationType {
	t := strings.ToLower(text)
	if !containsAny(t, r.BookingTokens) && !containsAny(t, r.ExperienceVerbs) {
		return domain.ReservationTypeUnset
	}
	for _, e := range r.Experiences {
		if containsAny(t, e.Stems) {
			return e.Type
		}
	}
	return domain.ReservationTypeUnset
}

// IsReset reports whether the message asks to abandon the current booking.
func (r *Rules) IsReset(text string) bool {
	t := strings.ToLower(text)
	toks := extract.Tokens(t)
	for _, p := range r.ResetPhrases {
		if strings.Contains(p, " ") {
			if strings.Contains(t, p) {
				return true
			}
			continue
		}
		if anyToken(toks, []string{p}) {
			return true
		}
	}
	return false
}

func (r *Rules) detectTopic(t string) string {
	bestKey, bestScore := "", -1
	for _, topic := range r.Topics {
		for _, trig := range topic.Triggers {
			if trig == "" || !strings.Contains(t, strings.ToLower(trig)) {
				continue
			}
			if score := topic.Priority*100 + len([]rune(trig)); score > bestScore {
				bestScore = score
				bestKey = topic.Key
			}
		}
	}
	return bestKey
}

func (r *Rules) detectInfo(t string, toks []string) string {
	if key := r.detectTopic(t); key != "" {
		return key
	}
	return firstMatch(r.InfoRules, t, toks)
}

func (r *Rules) detectProduct(t string, toks []string) string {
	return firstMatch(r.ProductRules, t, toks)
}

func (r *Rules) softSell(key string) bool {
	for _, k := range r.SoftSellKeys {
		if k == key {
			return true
		}
	}
	return false
}

// roomName returns the catalog id of a room named in the message.
func (r *Rules) roomName(toks []string) string {
	for _, ra := range r.rooms {
		if anyToken(toks, []string{ra.alias}) {
			return ra.id
		}
	}
	return ""
}

func (k KeywordRule) matches(t string, toks []string) bool {
	hit := containsAny(t, k.Contains) || anyToken(toks, k.Words)
	if !hit && len(k.AllOf) > 0 {
		hit = true
		for _, s := range k.AllOf {
			if !strings.Contains(t, s) {
				hit = false
				break
			}
		}
	}
	return hit && !containsAny(t, k.Without)
}

func firstMatch(rules []KeywordRule, t string, toks []string) string {
	for _, rule := range rules {
		if rule.matches(t, toks) {
			return rule.Key
		}
	}
	return ""
}

func containsAny(t string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

func anyToken(toks, words []string) bool {
	for _, tok := range toks {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}
