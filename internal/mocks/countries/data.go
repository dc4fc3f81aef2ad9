package countries

type language struct {
	Code string
	Name string
}

type continent struct {
	Code string
	Name string
}

type country struct {
	Code      string
	Name      string
	Capital   string
	Currency  string
	Continent string
	Languages []string
}

var languages = map[string]language{
	"de": {"de", "German"},
	"en": {"en", "English"},
	"es": {"es", "Spanish"},
	"fr": {"fr", "French"},
	"hi": {"hi", "Hindi"},
	"ja": {"ja", "Japanese"},
	"pt": {"pt", "Portuguese"},
	"sw": {"sw", "Swahili"},
}

var continents = []continent{
	{"AF", "Africa"},
	{"AS", "Asia"},
	{"EU", "Europe"},
	{"NA", "North America"},
	{"OC", "Oceania"},
	{"SA", "South America"},
}

var countryList = []country{
	{"AU", "Australia", "Canberra", "AUD", "OC", []string{"en"}},
	{"BR", "Brazil", "Brasília", "BRL", "SA", []string{"pt"}},
	{"DE", "Germany", "Berlin", "EUR", "EU", []string{"de"}},
	{"ES", "Spain", "Madrid", "EUR", "EU", []string{"es"}},
	{"FR", "France", "Paris", "EUR", "EU", []string{"fr"}},
	{"IN", "India", "New Delhi", "INR", "AS", []string{"hi", "en"}},
	{"JP", "Japan", "Tokyo", "JPY", "AS", []string{"ja"}},
	{"KE", "Kenya", "Nairobi", "KES", "AF", []string{"en", "sw"}},
	{"US", "United States", "Washington D.C.", "USD", "NA", []string{"en"}},
}
