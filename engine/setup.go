package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rustyeddy/priips/pricing"
	"github.com/rustyeddy/priips/product"
)

// TradeDescription is one entry of the products JSON file. Fields beyond
// the shared block apply only to some product types; unused fields are
// ignored by the builder for the declared type.
type TradeDescription struct {
	Type        string  `json:"type"`
	CcyFor      string  `json:"ccy_for"`
	CcyDom      string  `json:"ccy_dom"`
	CcySettle   string  `json:"ccy_set"`
	Position    string  `json:"position,omitempty"`
	Tenor       string  `json:"tenor"`
	Cost        float64 `json:"cost"`
	MRM         int     `json:"mrm"`
	CRM         int     `json:"crm"`
	SRI         int     `json:"sri"`
	Deliverable bool    `json:"deliverable,omitempty"`

	ReceiveCurrency string   `json:"receive_currency,omitempty"`
	PayCurrency     string   `json:"pay_currency,omitempty"`
	ReceiveAmount   *float64 `json:"receive_amount,omitempty"`
	PayAmount       *float64 `json:"pay_amount,omitempty"`

	ReceiveCurrencyNear string   `json:"receive_currency_near,omitempty"`
	PayCurrencyNear     string   `json:"pay_currency_near,omitempty"`
	ReceiveAmountNear   *float64 `json:"receive_amount_near,omitempty"`
	PayAmountNear       *float64 `json:"pay_amount_near,omitempty"`
	ReceiveCurrencyFar  string   `json:"receive_currency_far,omitempty"`
	PayCurrencyFar      string   `json:"pay_currency_far,omitempty"`
	ReceiveAmountFar    *float64 `json:"receive_amount_far,omitempty"`
	PayAmountFar        *float64 `json:"pay_amount_far,omitempty"`

	OptionType   string   `json:"option_type,omitempty"`
	CallCurrency string   `json:"call_currency,omitempty"`
	PutCurrency  string   `json:"put_currency,omitempty"`
	CallAmount   *float64 `json:"call_amount,omitempty"`
	PutAmount    *float64 `json:"put_amount,omitempty"`

	TenorIntermediate string `json:"tenor_intermediate,omitempty"`
	SubType           string `json:"sub_type,omitempty"`
}

// LoadProducts reads the products JSON file and builds the product list.
// Descriptions that cannot be built (unknown type, bad enum strings) get
// a failed placeholder so the run continues and list positions stay
// stable.
func LoadProducts(path string, tradeDate time.Time) ([]product.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products file: %w", err)
	}

	var descs []TradeDescription
	if err := json.Unmarshal(data, &descs); err != nil {
		return nil, fmt.Errorf("parse products file %s: %w", path, err)
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("products file %s names no products", path)
	}

	return BuildProducts(descs, tradeDate), nil
}

// BuildProducts turns trade descriptions into products, assigning list
// indices in order.
func BuildProducts(descs []TradeDescription, tradeDate time.Time) []product.Product {
	products := make([]product.Product, len(descs))
	for i, d := range descs {
		products[i] = buildProduct(d, tradeDate, i)
	}
	return products
}

func buildProduct(d TradeDescription, tradeDate time.Time, i int) product.Product {
	base := product.Base{
		TradeDate: tradeDate,
		CcyFor:    d.CcyFor,
		CcyDom:    d.CcyDom,
		CcySettle: d.CcySettle,
		TenorRHP:  d.Tenor,
		Cost:      d.Cost,
		MRM:       d.MRM,
		CRM:       d.CRM,
		SRI:       d.SRI,
	}

	pos := product.Long
	if d.Position != "" {
		parsed, err := product.ParsePosition(d.Position)
		if err != nil {
			u := product.NewUnknown(d.Type, i)
			u.Fail(product.FailUnknownType, err)
			return u
		}
		pos = parsed
	}
	base.Position = pos

	switch d.Type {
	case "FX_Forward":
		p := &product.Forward{
			Base:            base,
			Deliverable:     d.Deliverable,
			ReceiveCurrency: d.ReceiveCurrency,
			PayCurrency:     d.PayCurrency,
			ReceiveAmount:   d.ReceiveAmount,
			PayAmount:       d.PayAmount,
		}
		p.SetIndex(i)
		return p

	case "FX_Swap":
		p := &product.Swap{
			Base:                base,
			Deliverable:         d.Deliverable,
			ReceiveCurrencyNear: d.ReceiveCurrencyNear,
			PayCurrencyNear:     d.PayCurrencyNear,
			ReceiveAmountNear:   d.ReceiveAmountNear,
			PayAmountNear:       d.PayAmountNear,
			ReceiveCurrencyFar:  d.ReceiveCurrencyFar,
			PayCurrencyFar:      d.PayCurrencyFar,
			ReceiveAmountFar:    d.ReceiveAmountFar,
			PayAmountFar:        d.PayAmountFar,
		}
		p.SetIndex(i)
		return p

	case "FX_Option":
		optType, err := pricing.ParseOptionType(d.OptionType)
		if err != nil {
			u := product.NewUnknown(d.Type, i)
			u.Fail(product.FailUnknownType, err)
			return u
		}
		p := &product.Option{
			Base:         base,
			OptionType:   optType,
			CallCurrency: d.CallCurrency,
			PutCurrency:  d.PutCurrency,
			CallAmount:   d.CallAmount,
			PutAmount:    d.PutAmount,
		}
		p.SetIndex(i)
		return p

	case "FX_ODF":
		p := &product.OptionDatedForward{
			Base:              base,
			Deliverable:       d.Deliverable,
			TenorIntermediate: d.TenorIntermediate,
			ReceiveCurrency:   d.ReceiveCurrency,
			PayCurrency:       d.PayCurrency,
			ReceiveAmount:     d.ReceiveAmount,
			PayAmount:         d.PayAmount,
		}
		p.SetIndex(i)
		return p

	case "FX_DCI":
		p := &product.DualCurrencyInvestment{
			Base:    base,
			SubType: d.SubType,
		}
		p.SetIndex(i)
		return p
	}

	return product.NewUnknown(d.Type, i)
}
