package wink

import "strings"

const idSuffix = "_id"

// NormalizeDevice classifies a raw device record.
//
// The first member, in wire order, whose name ends in "_id" names the device
// type and holds its ID: {"light_bulb_id": "7", "name": "Porch"} becomes a
// light_bulb with path /light_bulbs/7. The record itself is kept as Props
// without copying. It returns nil when no member qualifies.
func NormalizeDevice(raw RawObject) *Device {
	for _, p := range raw {
		if !strings.HasSuffix(p.Key, idSuffix) {
			continue
		}
		typ := strings.TrimSuffix(p.Key, idSuffix)
		id := raw.Text(p.Key)
		return &Device{
			ID:    id,
			Type:  typ,
			Name:  raw.Text("name"),
			Path:  "/" + typ + "s/" + id,
			Props: raw,
		}
	}
	return nil
}
