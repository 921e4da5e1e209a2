package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/summit-locator/internal/domain"
	"github.com/summit-locator/internal/pkg/validator"
)

// Колонки исходного списка вершин (после двух строк заголовка)
const (
	colRef = iota
	colAssociation
	colRegion
	colName
	colAltM
	colAltFt
	colGridRef1
	colGridRef2
	colLongitude
	colLatitude
	colPoints
	colBonus
	colValidFrom
	colValidTo
	colActivations
	colActivationDate
	colActivationCall

	minColumns = colValidTo + 1
)

var (
	ErrTooFewFields  = errors.New("too few fields")
	ErrInvalidNumber = errors.New("invalid number")
	ErrInvalidRow    = errors.New("row failed validation")
)

// ParsedRow - типизированная строка источника, проверенная сразу после разбора
type ParsedRow struct {
	Line        int     `validate:"-"`
	Ref         string  `validate:"required,summitref"`
	Name        string  `validate:"required"`
	Association string  `validate:"required"`
	Region      string  `validate:"required"`
	Lat         float64 `validate:"min=-90,max=90"`
	Lon         float64 `validate:"min=-180,max=180"`
	Altitude    int     `validate:"min=0"`
	Points      int     `validate:"min=1"`
	Bonus       *int    `validate:"omitempty,min=0"`
	Activations int     `validate:"min=0"`
	ValidFrom   *string `validate:"-"`
	ValidTo     *string `validate:"-"`
}

// Summit переводит строку в запись базы; id присваивает писатель
func (r *ParsedRow) Summit() *domain.Summit {
	return &domain.Summit{
		Ref:         r.Ref,
		Name:        r.Name,
		Lat:         r.Lat,
		Lon:         r.Lon,
		Altitude:    r.Altitude,
		Points:      r.Points,
		Activations: r.Activations,
		Bonus:       r.Bonus,
		Association: r.Association,
		Region:      r.Region,
		ValidFrom:   r.ValidFrom,
		ValidTo:     r.ValidTo,
	}
}

// ParseLine делит строку на поля. Кавычка переключает режим цитирования и в поле не попадает;
// разделитель вне кавычек завершает поле.
func ParseLine(line string) []string {
	fields := make([]string, 0, colActivationCall+1)
	var b strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteByte(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(b.String()))

	return fields
}

// ParseRow приводит числовые поля и проверяет ограничения.
// Любая ошибка означает, что строку нужно пропустить.
func ParseRow(fields []string, line int) (*ParsedRow, error) {
	if len(fields) < minColumns {
		return nil, fmt.Errorf("line %d: %w: got %d, want at least %d", line, ErrTooFewFields, len(fields), minColumns)
	}

	lat, err := parseFloat(fields[colLatitude])
	if err != nil {
		return nil, fmt.Errorf("line %d: latitude: %w", line, err)
	}
	lon, err := parseFloat(fields[colLongitude])
	if err != nil {
		return nil, fmt.Errorf("line %d: longitude: %w", line, err)
	}
	altitude, err := parseInt(fields[colAltM])
	if err != nil {
		return nil, fmt.Errorf("line %d: altitude: %w", line, err)
	}
	points, err := parseInt(fields[colPoints])
	if err != nil {
		return nil, fmt.Errorf("line %d: points: %w", line, err)
	}

	row := &ParsedRow{
		Line:        line,
		Ref:         fields[colRef],
		Name:        fields[colName],
		Association: fields[colAssociation],
		Region:      fields[colRegion],
		Lat:         lat,
		Lon:         lon,
		Altitude:    altitude,
		Points:      points,
		ValidFrom:   optionalString(fields[colValidFrom]),
		ValidTo:     optionalString(fields[colValidTo]),
	}

	// необязательные поля: пустое или нечисловое значение - отсутствие данных
	if bonus, err := parseInt(fields[colBonus]); err == nil {
		row.Bonus = &bonus
	}
	if len(fields) > colActivations {
		if activations, err := parseInt(fields[colActivations]); err == nil {
			row.Activations = activations
		}
	}

	if err := validator.Validate(row); err != nil {
		return nil, fmt.Errorf("line %d: %w: %v", line, ErrInvalidRow, err)
	}

	return row, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidNumber)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

func parseInt(s string) (int, error) {
	v, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidNumber, s)
	}
	return int(math.Round(v)), nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
