package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/99minutos/rental-system/internal/core/domain"
)

// SegmentSeparator joins the fields of one vehicle inside a listing.
const SegmentSeparator = ","

// FormatPrice renders a price as a plain decimal with '.' as separator, no
// grouping and at least one fractional digit: 1500 -> "1500.0".
func FormatPrice(d decimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// EncodeVehicle renders id,brand,model,regNumber,pricePerDay.
func EncodeVehicle(v domain.Vehicle) (string, error) {
	fields := []string{v.Brand, v.Model, v.RegNumber}
	if err := checkFields(fields, SegmentSeparator); err != nil {
		return "", fmt.Errorf("vehicle %d: %w", v.ID, err)
	}
	return strings.Join([]string{
		strconv.FormatInt(v.ID, 10),
		v.Brand,
		v.Model,
		v.RegNumber,
		FormatPrice(v.PricePerDay),
	}, SegmentSeparator), nil
}

// ParseVehicle decodes a segment produced by EncodeVehicle. Type and
// availability are not carried on the wire and are left zero.
func ParseVehicle(segment string) (domain.Vehicle, error) {
	parts := strings.Split(segment, SegmentSeparator)
	if len(parts) != 5 {
		return domain.Vehicle{}, fmt.Errorf("%w: vehicle segment %q", ErrMalformedResponse, segment)
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("%w: vehicle id %q", ErrMalformedResponse, parts[0])
	}
	price, err := decimal.NewFromString(parts[4])
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("%w: vehicle price %q", ErrMalformedResponse, parts[4])
	}

	return domain.Vehicle{
		ID:          id,
		Brand:       parts[1],
		Model:       parts[2],
		RegNumber:   parts[3],
		PricePerDay: price,
	}, nil
}

// VehicleList builds the OK|LIST_VEHICLES|count|segment... response.
func VehicleList(command string, vehicles []domain.Vehicle) (Response, error) {
	fields := make([]string, 0, len(vehicles)+2)
	fields = append(fields, command, strconv.Itoa(len(vehicles)))
	for _, v := range vehicles {
		seg, err := EncodeVehicle(v)
		if err != nil {
			return Response{}, err
		}
		fields = append(fields, seg)
	}
	return OK(fields...), nil
}

// ParseVehicleList decodes the fields following OK|LIST_VEHICLES. It checks
// that the announced count matches the number of segments.
func ParseVehicleList(fields []string) ([]domain.Vehicle, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: missing vehicle count", ErrMalformedResponse)
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: vehicle count %q", ErrMalformedResponse, fields[0])
	}
	segments := fields[1:]
	if len(segments) != count {
		return nil, fmt.Errorf("%w: announced %d vehicles, got %d", ErrMalformedResponse, count, len(segments))
	}

	vehicles := make([]domain.Vehicle, 0, count)
	for _, seg := range segments {
		v, err := ParseVehicle(seg)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, nil
}
