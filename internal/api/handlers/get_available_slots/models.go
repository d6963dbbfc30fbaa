package get_available_slots

import (
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-WorkshopService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-WorkshopService/internal/usecase/get_available_slots"
)

var (
	errInvalidDays       = errors.New("invalid days")
	errInvalidResourceID = errors.New("invalid resourceId")
)

// SlotsResponse сетка слотов
type SlotsResponse struct {
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	SlotMinutes int           `json:"slotMinutes"`
	FreeSlots   int           `json:"freeSlots"`
	Days        []DayResponse `json:"days"`
}

// DayResponse слоты одного дня
type DayResponse struct {
	Date      string             `json:"date"` // "2026-03-02"
	Resources []ResourceResponse `json:"resources"`
}

// ResourceResponse подъёмник и его слоты за день
type ResourceResponse struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Number   int            `json:"number"`
	Slots    []SlotResponse `json:"slots"`
}

// SlotResponse один слот
type SlotResponse struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Occupied bool      `json:"occupied"`
	Token    string    `json:"token"`
}

// ToUseCaseRequest разбирает query параметры; пустые параметры означают значения по умолчанию
func ToUseCaseRequest(q url.Values) (*getAvailableSlots.Request, error) {
	req := &getAvailableSlots.Request{}

	if raw := q.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errInvalidDays
		}
		req.Days = &days
	}

	if raw := q.Get("category"); raw != "" {
		category := domain.ResourceCategory(raw)
		req.Category = &category
	}

	if raw := q.Get("resourceId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errInvalidResourceID
		}
		req.ResourceID = &id
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *SlotsResponse {
	out := &SlotsResponse{
		From:        resp.From,
		To:          resp.To,
		SlotMinutes: resp.SlotMinutes,
		Days:        make([]DayResponse, 0, len(resp.Days)),
	}

	for _, day := range resp.Days {
		dayResp := DayResponse{
			Date:      day.Day.Format(domain.DateFormat),
			Resources: make([]ResourceResponse, 0, len(day.Resources)),
		}
		for _, rs := range day.Resources {
			resResp := ResourceResponse{
				ID:       rs.Resource.ID,
				Name:     rs.Resource.Label(),
				Category: string(rs.Resource.Category),
				Number:   rs.Resource.Number,
				Slots:    make([]SlotResponse, 0, len(rs.Slots)),
			}
			for _, slot := range rs.Slots {
				if !slot.Occupied {
					out.FreeSlots++
				}
				resResp.Slots = append(resResp.Slots, SlotResponse{
					Start:    slot.Start,
					End:      slot.End,
					Occupied: slot.Occupied,
					Token:    slot.Token.String(),
				})
			}
			dayResp.Resources = append(dayResp.Resources, resResp)
		}
		out.Days = append(out.Days, dayResp)
	}

	return out
}
