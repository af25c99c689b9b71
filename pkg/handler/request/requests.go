package request

import (
	"net/url"
	"strings"

	"github.com/yumyai/mutlookup/pkg/model"
)

// LookupForm is the query string shared by the page, the JSON API and the
// chart endpoint.
type LookupForm struct {
	Protein   string          `json:"protein"`
	Mutations string          `json:"mutations"` // comma separated, e.g. "K90R, P132H"
	Binning   model.Binning   `json:"binning"`
	Scale     model.Scale     `json:"scale"`
	Mode      model.CountMode `json:"mode"`
}

// ParseLookupForm reads the form from a query string. Repeated mutations
// parameters are joined, so ?mutations=K90R&mutations=P132H works too.
func ParseLookupForm(q url.Values) LookupForm {
	protein := strings.ToLower(strings.TrimSpace(q.Get("protein")))
	if protein == "" {
		protein = string(model.ALL_PROTEINS[0])
	}
	return LookupForm{
		Protein:   protein,
		Mutations: strings.Join(q["mutations"], ","),
		Binning:   NewBinning(q.Get("binning")),
		Scale:     NewScale(q.Get("scale")),
		Mode:      NewCountMode(q.Get("mode")),
	}
}

// Empty reports whether no mutation was typed yet.
func (f LookupForm) Empty() bool {
	return len(model.ParseMutations(f.Mutations)) == 0
}

func (f LookupForm) ToModel() (model.LookupRequest, error) {
	protein, err := model.ParseProtein(f.Protein)
	if err != nil {
		return model.LookupRequest{}, err
	}
	return model.LookupRequest{
		Protein:   protein,
		Mutations: []string{f.Mutations},
		Binning:   f.Binning,
		Scale:     f.Scale,
		Mode:      f.Mode,
	}, nil
}

// Values encodes the form back into a query string, for the chart URL.
func (f LookupForm) Values() url.Values {
	v := url.Values{}
	v.Set("protein", f.Protein)
	v.Set("mutations", f.Mutations)
	v.Set("binning", string(f.Binning))
	v.Set("scale", string(f.Scale))
	v.Set("mode", string(f.Mode))
	return v
}
