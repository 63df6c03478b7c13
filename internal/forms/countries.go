package forms

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ISO 3166-1 alpha-2 codes offered as billing countries.
const countryCodes = "AD AE AF AG AI AL AM AO AQ AR AS AT AU AW AX AZ BA BB BD BE BF BG BH BI BJ BL BM BN BO BQ BR BS BT BV BW BY BZ CA CC CD CF CG CH CI CK CL CM CN CO CR CU CV CW CX CY CZ DE DJ DK DM DO DZ EC EE EG EH ER ES ET FI FJ FK FM FO FR GA GB GD GE GF GG GH GI GL GM GN GP GQ GR GS GT GU GW GY HK HM HN HR HT HU ID IE IL IM IN IO IQ IR IS IT JE JM JO JP KE KG KH KI KM KN KP KR KW KY KZ LA LB LC LI LK LR LS LT LU LV LY MA MC MD ME MF MG MH MK ML MM MN MO MP MQ MR MS MT MU MV MW MX MY MZ NA NC NE NF NG NI NL NO NP NR NU NZ OM PA PE PF PG PH PK PL PM PN PR PS PT PW PY QA RE RO RS RU RW SA SB SC SD SE SG SH SI SJ SK SL SM SN SO SR SS ST SV SX SY SZ TC TD TF TG TH TJ TK TL TM TN TO TR TT TV TW TZ UA UG UM US UY UZ VA VC VE VG VI VN VU WF WS YE YT ZA ZM ZW"

// Country is a billing country choice.
type Country struct {
	Code string
	Name string
}

var (
	countriesOnce sync.Once
	countries     []Country
	countrySet    map[string]struct{}
)

// Countries returns every country choice sorted by English name.
func Countries() []Country {
	countriesOnce.Do(func() {
		namer := display.English.Regions()
		countrySet = make(map[string]struct{})
		for _, code := range strings.Fields(countryCodes) {
			countrySet[code] = struct{}{}
			name := code
			if region, err := language.ParseRegion(code); err == nil {
				if n := namer.Name(region); n != "" {
					name = n
				}
			}
			countries = append(countries, Country{Code: code, Name: name})
		}

		c := collate.New(language.English, collate.IgnoreCase, collate.IgnoreDiacritics)
		sort.SliceStable(countries, func(i, j int) bool {
			return c.CompareString(countries[i].Name, countries[j].Name) < 0
		})
	})
	return countries
}

// IsCountry reports whether code is one of the offered choices.
func IsCountry(code string) bool {
	Countries()
	_, ok := countrySet[code]
	return ok
}
