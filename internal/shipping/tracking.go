// Package shipping maps couriers onto their public tracking pages.
package shipping

import "strings"

const awbPlaceholder = "{awb}"

var courierTemplates = map[string]string{
	"delhivery":  "https://www.delhivery.com/track/package/{awb}",
	"bluedart":   "https://www.bluedart.com/tracking?trackfor=0&trackno={awb}",
	"dtdc":       "https://www.dtdc.in/tracking.asp?awb={awb}",
	"ekart":      "https://ekartlogistics.com/shipmenttrack/{awb}",
	"xpressbees": "https://www.xpressbees.com/shipment/tracking?awbNo={awb}",
	"indiapost":  "https://www.indiapost.gov.in/_layouts/15/dop.portal.tracking/trackconsignment.aspx?lt={awb}",
}

// TrackingURL substitutes the AWB into the courier's URL template. Unknown
// couriers (including "other") get an empty string, not an error.
func TrackingURL(courier, awb string) string {
	tpl, ok := courierTemplates[strings.ToLower(strings.TrimSpace(courier))]
	if !ok {
		return ""
	}
	return strings.ReplaceAll(tpl, awbPlaceholder, awb)
}

// Couriers lists the supported courier keys.
func Couriers() []string {
	out := make([]string, 0, len(courierTemplates))
	for k := range courierTemplates {
		out = append(out, k)
	}
	return out
}
