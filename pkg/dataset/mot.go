package dataset

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/zumolabs/zumo/pkg/saver"
)

// MOT (Multi-Object Tracking) output, per https://motchallenge.net/faq/.
// Heavily lossy: one CSV row per tracked detection, nothing else. Rows
// have 9 columns: frame, track id, bbox x, y, w, h, consider flag,
// object type, visibility.

const motColumns = 9

// MOT object types, from the MOTChallenge label set.
const (
	MotPedestrian          = 1
	MotPersonOnVehicle     = 2
	MotCar                 = 3
	MotBicycle             = 4
	MotMotorbike           = 5
	MotNonMotorizedVehicle = 6
	MotStaticPerson        = 7
	MotDistractor          = 8
	MotOccluder            = 9
	MotOccluderOnGround    = 10
	MotOccluderFull        = 11
	MotReflection          = 12
	MotCrowd               = 13
)

func serializeMOT(s *saver.Saver) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	for _, ann := range s.Annotations {
		img, ok := s.Images[ann.ImageID]
		if !ok || img.Style != saver.StyleDefault {
			continue
		}
		// Only tracked detections with resolved geometry make it out.
		if ann.PersonID == nil || !ann.Resolved() {
			continue
		}
		row := []string{
			strconv.Itoa(img.Frame),
			strconv.Itoa(*ann.PersonID),
			formatFloat(ann.Bbox[0]),
			formatFloat(ann.Bbox[1]),
			formatFloat(ann.Bbox[2]),
			formatFloat(ann.Bbox[3]),
			"1",
			strconv.Itoa(ann.MotType),
			"1.0",
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseMOT validates row shape. MOT rows carry no category or image
// tables, so a full dataset cannot be reconstructed from them.
func parseMOT(data []byte, opt *ParseOptions) error {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return parseErrorf(FormatMOT, "invalid CSV: %v", err)
	}
	for i, row := range rows {
		if len(row) != motColumns {
			return parseErrorf(FormatMOT, "row %v has %v columns, expected %v", i, len(row), motColumns)
		}
		for col := 0; col < 6; col++ {
			if _, err := strconv.ParseFloat(row[col], 64); err != nil {
				return parseErrorf(FormatMOT, "row %v column %v is not numeric: %q", i, col, row[col])
			}
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
