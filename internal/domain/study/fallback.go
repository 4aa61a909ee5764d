package study

import "sort"

// Cascading dropdown fallback, served when the store cannot answer. The
// values mirror the site network the service ships against.
var (
	fallbackSites = []string{
		"Flourish San Antonio",
		"Flourish Orlando AstraZeneca",
		"Flourish Boca Ration",
		"Flourish Miami",
	}

	fallbackSponsorsBySite = map[string][]string{
		"Flourish San Antonio":         {"CinFina Pharma"},
		"Flourish Orlando AstraZeneca": {"AstraZeneca"},
		"Flourish Boca Ration":         {"Boehringer Ingelrim"},
		"Flourish Miami":               {"Pfizer"},
	}

	fallbackProtocols = map[string]map[string][]string{
		"Flourish San Antonio": {
			"CinFina Pharma": {"CIN-110-112", "CIN-110-113"},
		},
		"Flourish Orlando AstraZeneca": {
			"AstraZeneca": {"D7650C000001", "D7650C000002"},
		},
		"Flourish Boca Ration": {
			"Boehringer Ingelrim": {"14-4-0056", "14-4-0057"},
		},
		"Flourish Miami": {
			"Pfizer": {"PF-2024-001", "PF-2024-002"},
		},
	}
)

// FallbackDropdownValues returns every known site, sponsor and protocol.
func FallbackDropdownValues() DropdownValues {
	sponsorSet := map[string]bool{}
	protocolSet := map[string]bool{}
	for _, sponsors := range fallbackSponsorsBySite {
		for _, sp := range sponsors {
			sponsorSet[sp] = true
		}
	}
	for _, bySponsor := range fallbackProtocols {
		for _, protocols := range bySponsor {
			for _, p := range protocols {
				protocolSet[p] = true
			}
		}
	}
	return DropdownValues{
		Sites:     append([]string(nil), fallbackSites...),
		Sponsors:  sortedKeys(sponsorSet),
		Protocols: sortedKeys(protocolSet),
	}
}

// FallbackSponsors returns the sponsors operating at a site.
func FallbackSponsors(site string) []string {
	return append([]string(nil), fallbackSponsorsBySite[site]...)
}

// FallbackProtocols returns the protocols a sponsor runs at a site.
func FallbackProtocols(site, sponsor string) []string {
	if bySponsor, ok := fallbackProtocols[site]; ok {
		return append([]string(nil), bySponsor[sponsor]...)
	}
	return nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
