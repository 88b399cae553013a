package roster

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"minato-cat-support/internal/domain/features"
	"minato-cat-support/internal/domain/geo"
	"minato-cat-support/internal/domain/reports"
	"minato-cat-support/internal/platform/logger"
	"minato-cat-support/internal/ports/auth"
	"minato-cat-support/internal/ports/blob"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrForbidden            = errors.New("forbidden")
	ErrPrimaryPointRequired = fmt.Errorf("%w: primary point required", ErrInvalidInput)
)

type Service struct {
	repo  Repository
	codec features.Codec
	loc   *time.Location
	log   logger.Logger
	now   func() time.Time

	blobs        blob.Store
	photoTimeout time.Duration
}

func NewService(repo Repository, codec features.Codec, loc *time.Location, log logger.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:  repo,
		codec: codec,
		loc:   loc,
		log:   log,
		now:   time.Now,

		photoTimeout: reports.DefaultPhotoTimeout,
	}
}

// WithBlobs activa la subida de fotos de perfil inline (data URL) al blob store.
func (s *Service) WithBlobs(blobs blob.Store, timeout time.Duration) *Service {
	s.blobs = blobs
	if timeout > 0 {
		s.photoTimeout = timeout
	}
	return s
}

func (s *Service) Codec() features.Codec {
	return s.codec
}

func requireAdmin(actor auth.Actor) error {
	if strings.TrimSpace(actor.ID) == "" || !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// Snapshot lee las cuatro colecciones en paralelo.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Cats, err = s.repo.ListCats(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Points, err = s.repo.ListPoints(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Zones, err = s.repo.ListZones(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Members, err = s.repo.ListMembers(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *Service) GetCat(ctx context.Context, id string) (Cat, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cat{}, ErrInvalidInput
	}
	return s.repo.GetCat(ctx, id)
}

// -------------------------
// Admin saves
// -------------------------

type SaveCatInput struct {
	ID       string
	IsNew    bool
	Name     string
	ImageURL string
	Slots    PointSlots

	// Parts tiene prioridad; si compone vacío se usa FeaturesText.
	Parts        *features.Parts
	FeaturesText string
}

func (s *Service) SaveCat(ctx context.Context, actor auth.Actor, in SaveCatInput) (Cat, error) {
	if err := requireAdmin(actor); err != nil {
		return Cat{}, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Cat{}, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	primaryID := in.Slots.Primary()
	if primaryID == "" {
		return Cat{}, ErrPrimaryPointRequired
	}

	primary, err := s.repo.GetPoint(ctx, primaryID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Cat{}, fmt.Errorf("%w: unknown point %s", ErrInvalidInput, primaryID)
		}
		return Cat{}, err
	}
	for _, id := range in.Slots.Sub() {
		if _, err := s.repo.GetPoint(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return Cat{}, fmt.Errorf("%w: unknown point %s", ErrInvalidInput, id)
			}
			return Cat{}, err
		}
	}

	now := s.now()
	c := Cat{
		ID:        strings.TrimSpace(in.ID),
		Status:    StatusUnknown,
		CreatedAt: now,
	}
	if in.IsNew {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
	} else {
		existing, err := s.repo.GetCat(ctx, c.ID)
		if err != nil {
			return Cat{}, err
		}
		c = existing
	}

	text := strings.TrimSpace(in.FeaturesText)
	if in.Parts != nil {
		if composed := s.codec.Compose(*in.Parts); composed != "" {
			text = composed
		}
	}
	if text == "" && !in.IsNew {
		text = c.Features
	}

	c.Name = name
	c.ImageURL = s.relocateProfilePhoto(ctx, c.ID, strings.TrimSpace(in.ImageURL))
	c.Features = text
	c.PointID = primary.ID
	c.SubPointIDs = in.Slots.Sub()
	c.ZoneID = primary.ZoneID
	c.UpdatedAt = now

	if err := s.repo.SaveCat(ctx, c, in.IsNew); err != nil {
		return Cat{}, err
	}
	return c, nil
}

// relocateProfilePhoto sube la foto inline a cats/{id}/profile; si falla se guarda inline.
func (s *Service) relocateProfilePhoto(ctx context.Context, catID, imageURL string) string {
	if s.blobs == nil || !reports.IsInlinePhoto(imageURL) {
		return imageURL
	}
	ctx, cancel := context.WithTimeout(ctx, s.photoTimeout)
	defer cancel()

	l := s.log.With(map[string]any{"cat_id": catID})

	data, contentType, err := reports.DecodeDataURL(imageURL)
	if err != nil {
		l.Warn("profile photo kept inline: undecodable payload", map[string]any{"err": err})
		return imageURL
	}
	ref, err := s.blobs.Put(ctx, "cats/"+catID+"/profile"+reports.ExtensionFor(contentType), contentType, data)
	if err != nil {
		l.Warn("profile photo kept inline: blob upload failed", map[string]any{"err": err})
		return imageURL
	}
	return ref
}

type SavePointInput struct {
	ID     string
	IsNew  bool
	Name   string
	ZoneID string

	// Coordinates en DMS o decimal; vacío deja las coordenadas como estaban.
	Coordinates string
}

func (s *Service) SavePoint(ctx context.Context, actor auth.Actor, in SavePointInput) (FeedingPoint, error) {
	if err := requireAdmin(actor); err != nil {
		return FeedingPoint{}, err
	}

	name := strings.TrimSpace(in.Name)
	zoneID := strings.TrimSpace(in.ZoneID)
	if name == "" || zoneID == "" {
		return FeedingPoint{}, ErrInvalidInput
	}

	// Validación local antes de cualquier escritura.
	coords, hasCoords, err := geo.Parse(in.Coordinates)
	if err != nil {
		return FeedingPoint{}, err
	}

	if err := s.zoneExists(ctx, zoneID); err != nil {
		return FeedingPoint{}, err
	}

	p := FeedingPoint{ID: strings.TrimSpace(in.ID)}
	if in.IsNew {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
	} else {
		existing, err := s.repo.GetPoint(ctx, p.ID)
		if err != nil {
			return FeedingPoint{}, err
		}
		p = existing
	}

	p.Name = name
	p.ZoneID = zoneID
	if hasCoords {
		lat, lng := coords.Lat, coords.Lng
		p.Lat, p.Lng = &lat, &lng
	}

	if err := s.repo.SavePoint(ctx, p, in.IsNew); err != nil {
		return FeedingPoint{}, err
	}
	return p, nil
}

func (s *Service) zoneExists(ctx context.Context, zoneID string) error {
	zones, err := s.repo.ListZones(ctx)
	if err != nil {
		return err
	}
	for _, z := range zones {
		if z.ID == zoneID {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown zone %s", ErrInvalidInput, zoneID)
}

type SaveZoneInput struct {
	ID          string
	IsNew       bool
	Name        string
	Description string
}

func (s *Service) SaveZone(ctx context.Context, actor auth.Actor, in SaveZoneInput) (Zone, error) {
	if err := requireAdmin(actor); err != nil {
		return Zone{}, err
	}
	z := Zone{
		ID:          strings.TrimSpace(in.ID),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if z.Name == "" {
		return Zone{}, ErrInvalidInput
	}
	if z.ID == "" {
		if !in.IsNew {
			return Zone{}, ErrInvalidInput
		}
		z.ID = uuid.NewString()
	}

	if err := s.repo.SaveZone(ctx, z, in.IsNew); err != nil {
		return Zone{}, err
	}
	return z, nil
}

type SaveMemberInput struct {
	ID               string
	IsNew            bool
	Name             string
	Role             auth.Role
	PhoneModel       string
	AvailableHours   string
	ContactMethod    string
	MembershipExpiry *time.Time
}

func (s *Service) SaveMember(ctx context.Context, actor auth.Actor, in SaveMemberInput) (Member, error) {
	if err := requireAdmin(actor); err != nil {
		return Member{}, err
	}
	m := Member{
		ID:               strings.TrimSpace(in.ID),
		Name:             strings.TrimSpace(in.Name),
		Role:             auth.ParseRole(string(in.Role)),
		PhoneModel:       strings.TrimSpace(in.PhoneModel),
		AvailableHours:   strings.TrimSpace(in.AvailableHours),
		ContactMethod:    strings.TrimSpace(in.ContactMethod),
		MembershipExpiry: in.MembershipExpiry,
	}
	if m.Name == "" {
		return Member{}, ErrInvalidInput
	}
	if m.ID == "" {
		if !in.IsNew {
			return Member{}, ErrInvalidInput
		}
		m.ID = uuid.NewString()
	}

	if err := s.repo.SaveMember(ctx, m, in.IsNew); err != nil {
		return Member{}, err
	}
	return m, nil
}

// -------------------------
// Voluntarios
// -------------------------

// ToggleWatered marca el punto como regado hoy, o lo desmarca si ya lo estaba.
func (s *Service) ToggleWatered(ctx context.Context, actor auth.Actor, pointID string) (FeedingPoint, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return FeedingPoint{}, ErrForbidden
	}
	p, err := s.repo.GetPoint(ctx, strings.TrimSpace(pointID))
	if err != nil {
		return FeedingPoint{}, err
	}

	now := s.now()
	if p.LastWatered != nil && s.sameDay(*p.LastWatered, now) {
		p.LastWatered = nil
	} else {
		p.LastWatered = &now
	}

	if err := s.repo.SavePoint(ctx, p, false); err != nil {
		return FeedingPoint{}, err
	}
	return p, nil
}

// CatExists implementa reports.CatEffects.
func (s *Service) CatExists(ctx context.Context, catID string) (bool, error) {
	_, err := s.repo.GetCat(ctx, catID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ApplyReport actualiza el cache de estado del gato. Un reporte más viejo
// que el último aplicado no pisa el estado ni la última comida.
func (s *Service) ApplyReport(ctx context.Context, r reports.Report) error {
	c, err := s.repo.GetCat(ctx, r.CatID)
	if err != nil {
		return err
	}

	at := r.Time()
	changed := false

	if r.Fed && (c.LastFed == nil || at.After(*c.LastFed)) {
		c.LastFed = &at
		changed = true
	}
	if c.StatusAt == nil || !at.Before(*c.StatusAt) {
		c.Status = statusFor(r.Condition)
		c.StatusAt = &at
		changed = true
	}
	if !changed {
		return nil
	}

	c.UpdatedAt = s.now()
	return s.repo.SaveCat(ctx, c, false)
}

func statusFor(cond reports.Condition) CatStatus {
	switch cond {
	case reports.ConditionInjured:
		return StatusInjured
	case reports.ConditionBad:
		return StatusSick
	case reports.ConditionGood:
		return StatusHealthy
	default:
		return StatusUnknown
	}
}

// TodayView es la pantalla de inicio del voluntario.
type TodayView struct {
	Unchecked []Cat
	Sick      []Cat
}

// Today: gatos sin comida registrada hoy, y gatos heridos o enfermos.
func (s *Service) Today(ctx context.Context) (TodayView, error) {
	cats, err := s.repo.ListCats(ctx)
	if err != nil {
		return TodayView{}, err
	}

	now := s.now()
	v := TodayView{Unchecked: []Cat{}, Sick: []Cat{}}
	for _, c := range cats {
		if c.LastFed == nil || !s.sameDay(*c.LastFed, now) {
			v.Unchecked = append(v.Unchecked, c)
		}
		if c.Status == StatusInjured || c.Status == StatusSick {
			v.Sick = append(v.Sick, c)
		}
	}
	sort.Slice(v.Unchecked, func(i, j int) bool { return v.Unchecked[i].ID < v.Unchecked[j].ID })
	sort.Slice(v.Sick, func(i, j int) bool { return v.Sick[i].ID < v.Sick[j].ID })
	return v, nil
}

func (s *Service) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(s.loc).Date()
	by, bm, bd := b.In(s.loc).Date()
	return ay == by && am == bm && ad == bd
}
