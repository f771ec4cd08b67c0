package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/tzander/parkfee-cli/internal/domain"
)

// GetTicketInfo looks a ticket up for the given window. The backend
// signals "not found" two ways: TICKET_EXIST=0 on a clean status 0, or
// status -3 ("invalid data"); both normalize to a new-session candidate
// carrying whatever defaults the backend returned.
func (c *Client) GetTicketInfo(ctx context.Context, barcode domain.Barcode, from, to time.Time) (domain.TicketLookup, error) {
	req := &ticketInfoRequest{
		Barcode:  string(barcode),
		DateFrom: domain.FormatBackendTime(from),
		DateTo:   domain.FormatBackendTime(to),
	}
	if err := c.stampAuthenticated(&req.Header, MethodTicketInfo); err != nil {
		return domain.TicketLookup{}, err
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return domain.TicketLookup{}, err
	}

	switch {
	case resp.Status == domain.StatusOK && resp.TicketExist != 0:
		record, err := recordFromResponse(barcode, resp)
		if err != nil {
			return domain.TicketLookup{}, err
		}
		return domain.TicketLookup{Exists: true, Record: record}, nil

	case resp.Status == domain.StatusOK, resp.Status == domain.StatusInvalidData:
		return domain.TicketLookup{
			NewSessionCandidate: true,
			Record: domain.TicketRecord{
				Barcode:  barcode,
				Scenario: domain.ClassifyFlags(resp.FeeType, resp.FeeMultiDay, resp.FeeStartsType),
			},
		}, nil

	default:
		return domain.TicketLookup{}, domain.NewStatusError(resp.Status)
	}
}

// PayTicket settles the fee for a window and returns the receipt.
func (c *Client) PayTicket(ctx context.Context, barcode domain.Barcode, from, to time.Time, amountMinor int64) (domain.Receipt, error) {
	req := &ticketPayRequest{
		Barcode:  string(barcode),
		DateFrom: domain.FormatBackendTime(from),
		DateTo:   domain.FormatBackendTime(to),
		Fee:      amountMinor,
	}
	if err := c.stampAuthenticated(&req.Header, MethodTicketPay); err != nil {
		return domain.Receipt{}, err
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return domain.Receipt{}, err
	}
	if resp.Status != domain.StatusOK {
		return domain.Receipt{}, domain.NewStatusError(resp.Status)
	}

	return domain.Receipt{
		Barcode:       barcode,
		ValidFrom:     from,
		ValidTo:       to,
		AmountMinor:   amountMinor,
		ReceiptNumber: resp.ReceiptNumber,
	}, nil
}

func recordFromResponse(barcode domain.Barcode, resp Response) (domain.TicketRecord, error) {
	validFrom, err := domain.ParseBackendTime(resp.ValidFrom)
	if err != nil {
		return domain.TicketRecord{}, fmt.Errorf("decode VALID_FROM %q: %w", resp.ValidFrom, err)
	}

	var validTo time.Time
	if resp.ValidTo != "" {
		validTo, err = domain.ParseBackendTime(resp.ValidTo)
		if err != nil {
			return domain.TicketRecord{}, fmt.Errorf("decode VALID_TO %q: %w", resp.ValidTo, err)
		}
	}

	return domain.TicketRecord{
		Barcode:            barcode,
		Exists:             true,
		RegistrationNumber: resp.RegistrationNumber,
		ValidFrom:          validFrom,
		ValidTo:            validTo,
		FeeMinor:           resp.Fee,
		FeePaidMinor:       resp.FeePaid,
		Scenario:           domain.ClassifyFlags(resp.FeeType, resp.FeeMultiDay, resp.FeeStartsType),
	}, nil
}
