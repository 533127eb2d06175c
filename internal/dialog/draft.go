package dialog

import (
	"strconv"

	"github.com/m3rciful/catalogbot/core/telegram/state"
	"github.com/m3rciful/catalogbot/internal/catalog"
)

// Flow and state names persisted in state.Session.
const (
	FlowCreate = "create"
	FlowUpdate = "update"

	StateCreateName        = "create.awaiting_name"
	StateCreateDescription = "create.awaiting_description"
	StateCreatePrice       = "create.awaiting_price"

	StateUpdateName        = "update.awaiting_name"
	StateUpdateDescription = "update.awaiting_description"
	StateUpdatePrice       = "update.awaiting_price"
)

const (
	keyID          = "id"
	keyName        = "name"
	keyDescription = "description"
	keyPrice       = "price"
)

// draft is the product being collected. A nil Description is stored as an absent key.
type draft struct {
	ID          int64
	Name        string
	Description *string
	Price       float64
	HasPrice    bool
}

func draftFromProduct(p catalog.Product) draft {
	d := draft{ID: p.ID, Name: p.Name, Price: p.Price, HasPrice: true}
	if p.Description != nil {
		desc := *p.Description
		d.Description = &desc
	}
	return d
}

func (d draft) input() catalog.ProductInput {
	return catalog.ProductInput{Name: d.Name, Description: d.Description, Price: d.Price}
}

func (d draft) data() map[string]string {
	m := map[string]string{keyName: d.Name}
	if d.ID != 0 {
		m[keyID] = strconv.FormatInt(d.ID, 10)
	}
	if d.Description != nil {
		m[keyDescription] = *d.Description
	}
	if d.HasPrice {
		m[keyPrice] = strconv.FormatFloat(d.Price, 'g', -1, 64)
	}
	return m
}

func draftFromSession(s *state.Session) draft {
	var d draft
	if s == nil {
		return d
	}
	d.Name = s.Data[keyName]
	if v, ok := s.Data[keyDescription]; ok {
		d.Description = &v
	}
	d.ID, _ = strconv.ParseInt(s.Data[keyID], 10, 64)
	if v, ok := s.Data[keyPrice]; ok {
		d.Price, _ = strconv.ParseFloat(v, 64)
		d.HasPrice = true
	}
	return d
}
