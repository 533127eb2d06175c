package catalog

// Product is a catalog entry as returned by the remote API.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
}

// ProductInput is the write payload for create and update. It never carries an id.
type ProductInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
}

// Input strips the id from p.
func (p Product) Input() ProductInput {
	return ProductInput{Name: p.Name, Description: p.Description, Price: p.Price}
}
