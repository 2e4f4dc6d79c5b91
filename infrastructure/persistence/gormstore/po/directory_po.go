package po

import (
	"time"

	"workshop/domain/client"
	"workshop/domain/provider"
	"workshop/domain/worker"
)

type ClientPO struct {
	ID             string    `gorm:"primaryKey;size:64"`
	First          string    `gorm:"size:100;not null"`
	Last           string    `gorm:"size:100;not null"`
	Middle         string    `gorm:"size:100"`
	Phone          *string   `gorm:"size:20;uniqueIndex"`
	Mail           string    `gorm:"size:200"`
	Username       string    `gorm:"size:100;not null;uniqueIndex"`
	HashedPassword string    `gorm:"size:200;not null"`
	Date           time.Time `gorm:"not null"`
	Version        int       `gorm:"not null;default:0"`
}

func (ClientPO) TableName() string {
	return "clients"
}

func FromClientDomain(c *client.Client) *ClientPO {
	n := c.Name()
	return &ClientPO{
		ID:             c.ID(),
		First:          n.First,
		Last:           n.Last,
		Middle:         n.Middle,
		Phone:          nullable(c.Phone().Value()),
		Mail:           c.Email(),
		Username:       c.Username(),
		HashedPassword: c.PasswordDigest(),
		Date:           c.RegisteredAt(),
		Version:        c.Version(),
	}
}

func (p *ClientPO) ToDomain() *client.Client {
	return client.RebuildFromDTO(client.ReconstructionDTO{
		ID:             p.ID,
		First:          p.First,
		Last:           p.Last,
		Middle:         p.Middle,
		Phone:          deref(p.Phone),
		Email:          p.Mail,
		Username:       p.Username,
		PasswordDigest: p.HashedPassword,
		RegisteredAt:   p.Date,
		Version:        p.Version,
	})
}

type WorkerPO struct {
	ID             string     `gorm:"primaryKey;size:64"`
	First          string     `gorm:"size:100;not null"`
	Last           string     `gorm:"size:100"`
	Middle         string     `gorm:"size:100"`
	Phone          *string    `gorm:"size:20;uniqueIndex"`
	Mail           string     `gorm:"size:200"`
	Username       string     `gorm:"size:100;not null;uniqueIndex"`
	HashedPassword string     `gorm:"size:200;not null"`
	Position       string     `gorm:"size:100;not null"`
	PassSeries     string     `gorm:"size:4"`
	PassNumber     string     `gorm:"size:6"`
	BornDate       *time.Time `gorm:"type:date"`
	Date           time.Time  `gorm:"not null"`
	Version        int        `gorm:"not null;default:0"`
}

func (WorkerPO) TableName() string {
	return "workers"
}

func FromWorkerDomain(w *worker.Worker) *WorkerPO {
	n := w.Name()
	p := &WorkerPO{
		ID:             w.ID(),
		First:          n.First,
		Last:           n.Last,
		Middle:         n.Middle,
		Phone:          nullable(w.Phone().Value()),
		Mail:           w.Email(),
		Username:       w.Username(),
		HashedPassword: w.PasswordDigest(),
		Position:       w.Position(),
		PassSeries:     w.PassSeries(),
		PassNumber:     w.PassNumber(),
		Date:           w.HiredAt(),
		Version:        w.Version(),
	}
	if born := w.BornDate(); !born.IsZero() {
		p.BornDate = &born
	}
	return p
}

func (p *WorkerPO) ToDomain() *worker.Worker {
	dto := worker.ReconstructionDTO{
		ID:             p.ID,
		First:          p.First,
		Last:           p.Last,
		Middle:         p.Middle,
		Phone:          deref(p.Phone),
		Email:          p.Mail,
		Username:       p.Username,
		PasswordDigest: p.HashedPassword,
		Position:       p.Position,
		PassSeries:     p.PassSeries,
		PassNumber:     p.PassNumber,
		HiredAt:        p.Date,
		Version:        p.Version,
	}
	if p.BornDate != nil {
		dto.BornDate = *p.BornDate
	}
	return worker.RebuildFromDTO(dto)
}

type ProviderPO struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Name      string    `gorm:"size:200;not null"`
	INN       string    `gorm:"column:inn;size:12;not null;uniqueIndex"`
	Phone     string    `gorm:"size:20"`
	Mail      string    `gorm:"size:200"`
	Address   string    `gorm:"size:500"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	Version   int       `gorm:"not null;default:0"`
}

func (ProviderPO) TableName() string {
	return "providers"
}

func FromProviderDomain(p *provider.Provider) *ProviderPO {
	return &ProviderPO{
		ID:        p.ID(),
		Name:      p.Name(),
		INN:       p.INN(),
		Phone:     p.Phone().Value(),
		Mail:      p.Email(),
		Address:   p.Address(),
		CreatedAt: p.CreatedAt(),
		Version:   p.Version(),
	}
}

func (p *ProviderPO) ToDomain() *provider.Provider {
	return provider.RebuildFromDTO(provider.ReconstructionDTO{
		ID:        p.ID,
		Name:      p.Name,
		INN:       p.INN,
		Phone:     p.Phone,
		Email:     p.Mail,
		Address:   p.Address,
		CreatedAt: p.CreatedAt,
		Version:   p.Version,
	})
}

// MatProviderPO links a provider to a material it supplies.
type MatProviderPO struct {
	ID         string    `gorm:"primaryKey;size:64"`
	ProviderID string    `gorm:"size:64;not null;uniqueIndex:idx_provider_material"`
	MaterialID string    `gorm:"size:64;not null;uniqueIndex:idx_provider_material;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (MatProviderPO) TableName() string {
	return "mat_provider"
}

func FromLinkDomain(l provider.MaterialLink) *MatProviderPO {
	return &MatProviderPO{
		ID:         l.ID,
		ProviderID: l.ProviderID,
		MaterialID: l.MaterialID,
		CreatedAt:  l.CreatedAt,
	}
}

func (p *MatProviderPO) ToDomain() provider.MaterialLink {
	return provider.MaterialLink{
		ID:         p.ID,
		ProviderID: p.ProviderID,
		MaterialID: p.MaterialID,
		CreatedAt:  p.CreatedAt,
	}
}

// Empty phones are stored as NULL so the unique index ignores them.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
