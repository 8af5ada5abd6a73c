// Package pdf genera el comprobante imprimible de un cupón de descuento.
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────┐
//	│  HEADER: Empresa + CNPJ  │  CUPÓN          │
//	│  ───────────────────────────────────────  │
//	│  Título / Descripción                      │
//	│  VALOR (grande)          │  Válido hasta   │
//	│  ───────────────────────────────────────  │
//	│  QR con el id del cupón  │  Leyenda        │
//	└───────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/cupones-api/internal/application/usecase"
	"github.com/jhoicas/cupones-api/internal/domain/entity"
	"github.com/jhoicas/cupones-api/pkg/cnpj"
)

var _ usecase.VoucherGenerator = (*MarotoVoucherGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 176, Green: 32, Blue: 64}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoVoucherGenerator implementa usecase.VoucherGenerator usando Maroto v2.
type MarotoVoucherGenerator struct{}

// NewMarotoVoucherGenerator construye el generador.
func NewMarotoVoucherGenerator() *MarotoVoucherGenerator { return &MarotoVoucherGenerator{} }

// GenerateCouponVoucher genera el PDF del cupón y devuelve sus bytes.
func (g *MarotoVoucherGenerator) GenerateCouponVoucher(coupon *entity.Coupon, company *entity.Company) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Cupón "+coupon.Title, true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(bodyRows(coupon)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(coupon))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(company *entity.Company) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("CNPJ: "+nonEmpty(cnpj.Format(company.CNPJ), "—"), props.Text{
				Size: 8, Top: 8, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("CUPÓN DE DESCUENTO", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 3,
			}),
		),
	)
}

func bodyRows(coupon *entity.Coupon) []core.Row {
	return []core.Row{
		row.New(10).Add(col.New(12).Add(
			text.New(coupon.Title, props.Text{Style: fontstyle.Bold, Size: 11, Top: 3}),
		)),
		row.New(14).Add(col.New(12).Add(
			text.New(nonEmpty(coupon.Description, " "), props.Text{Size: 8, Top: 1, Color: colorGray}),
		)),
		row.New(18).Add(
			col.New(7).Add(
				text.New(FormatValue(coupon.Value), props.Text{
					Style: fontstyle.Bold, Size: 20, Color: colorPrimary, Top: 2,
				}),
			),
			col.New(5).Add(
				text.New("Válido hasta", props.Text{Size: 7, Align: align.Right, Top: 3, Color: colorGray}),
				text.New(coupon.ValidUntil.Format("02/01/2006"), props.Text{
					Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 8,
				}),
			),
		),
	}
}

// footerRow QR con el id del cupón para validarlo en caja.
func footerRow(coupon *entity.Coupon) core.Row {
	return row.New(40).Add(
		col.New(4).Add(code.NewQr(coupon.ID, props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(8).Add(
			text.New("Presente este código en el establecimiento.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New(coupon.ID, props.Text{Size: 6.5, Top: 14, Left: 3, Color: colorGray}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// FormatValue formatea un monto con separador de miles "." y decimal ",".
// Ej: 1234.5 → "R$ 1.234,50"
func FormatValue(v decimal.Decimal) string {
	s := v.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + "R$ " + groupThousands(intPart) + "," + frac
}

// groupThousands inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000"
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
