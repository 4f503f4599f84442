package transform

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Keywords holds the substring sets driving picklist classification and the
// duration exemption. The lists are hand-curated configuration data, not
// logic: their coverage of future schemas is unverified, so they can be
// replaced wholesale from a JSON file without touching code.
type Keywords struct {
	// Picklist marks string columns whose normalized name suggests a closed
	// value set.
	Picklist []string `json:"picklist"`
	// NonPicklist overrides Picklist: free-text, identifier, and address
	// columns that must stay plain strings.
	NonPicklist []string `json:"non_picklist"`
	// Duration marks auto-calculated period columns that are never mandatory
	// unless the schema explicitly requires them.
	Duration []string `json:"duration"`
}

// DefaultKeywords returns the built-in classification lists.
func DefaultKeywords() Keywords {
	return Keywords{
		Picklist: []string{
			"gender", "salutation", "marital", "legalentity",
			"employmenttype", "employeeclass", "employeetype", "contingent",
			"timezone", "country", "nationality", "addresstype", "isprimary",
			"currency", "frequency", "paygroup", "holidaycalendar",
			"eventreason", "eventtype", "contracttype",
			"costcenter", "division", "department", "businessunit",
			"location", "jobcode", "jobtitle", "jobfamily", "joblevel",
			"timetype", "workschedule", "payscale",
			"locale", "status",
		},
		NonPicklist: []string{
			"firstname", "lastname", "middlename", "preferredname",
			"formalname", "suffixname",
			"address1", "address2", "address3", "addressline", "street",
			"city", "postcode", "postalcode", "zipcode",
			"emailaddress", "phone", "fax",
			"nationalid", "nino", "passport",
			"sequencenumber", "description", "comments", "remark",
		},
		Duration: []string{
			"duration", "period", "lengthofservice", "tenure", "probation",
			"probationperiod", "noticperiod", "noticeperiod", "servicedate",
		},
	}
}

// LoadKeywordsFile loads classification lists from a JSON file. Fields left
// out of the file keep their defaults.
func LoadKeywordsFile(path string) (Keywords, error) {
	kw := DefaultKeywords()

	b, err := os.ReadFile(path)
	if err != nil {
		return kw, fmt.Errorf("read keywords file: %w", err)
	}
	var overlay Keywords
	if err := json.Unmarshal(b, &overlay); err != nil {
		return kw, fmt.Errorf("parse keywords json: %w", err)
	}

	if overlay.Picklist != nil {
		kw.Picklist = overlay.Picklist
	}
	if overlay.NonPicklist != nil {
		kw.NonPicklist = overlay.NonPicklist
	}
	if overlay.Duration != nil {
		kw.Duration = overlay.Duration
	}
	return kw, nil
}

// PicklistName reports whether a normalized column name classifies as a
// picklist by keyword: it must contain at least one Picklist substring and
// none of the NonPicklist substrings. Containment, not equality.
func (k Keywords) PicklistName(norm string) bool {
	if containsAny(norm, k.NonPicklist) {
		return false
	}
	return containsAny(norm, k.Picklist)
}

// DurationName reports whether a normalized column name matches the duration
// exemption.
func (k Keywords) DurationName(norm string) bool {
	return containsAny(norm, k.Duration)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
