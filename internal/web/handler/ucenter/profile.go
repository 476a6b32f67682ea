package ucenter

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/oneid-io/oneid/internal/db/controller/customfield"
	"github.com/oneid-io/oneid/internal/db/controller/siteconfig"
	"github.com/oneid-io/oneid/internal/db/controller/user"
	"github.com/oneid-io/oneid/internal/db/models"
	"github.com/oneid-io/oneid/internal/web/handler"
)

// Profile handles GET /profile.
func (s *Service) Profile(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	resp, err := s.profile(c.UserContext(), u)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// UpdateProfile handles PATCH /profile and returns the updated profile.
func (s *Service) UpdateProfile(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}

	req := new(ProfileRequest)
	if err = handler.Parse(c, req); err != nil {
		return err
	}

	ctx := c.UserContext()

	err = user.UpdateProfile(ctx, s.deps.DB, u, user.Profile{
		Name:           req.Name,
		Email:          req.Email,
		Position:       req.Position,
		EmployeeNumber: req.EmployeeNumber,
		Gender:         req.Gender,
		Avatar:         req.Avatar,
	})
	if err != nil {
		return err
	}

	if req.CustomUser != nil && len(req.CustomUser.Data) > 0 {
		if err = customfield.SaveValues(ctx, s.deps.DB, u.ID, req.CustomUser.Data); err != nil {
			return err
		}
	}

	if u, err = user.GetByID(ctx, s.deps.DB, u.ID); err != nil {
		return err
	}

	resp, err := s.profile(ctx, u)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func (s *Service) profile(ctx context.Context, u *models.User) (*ProfileResponse, error) {
	account := siteconfig.DefaultAccountConfig()
	if err := account.Load(ctx, s.deps.DB); err != nil {
		return nil, err
	}

	depts, err := user.Depts(ctx, s.deps.DB, u.ID)
	if err != nil {
		return nil, err
	}

	resp := &ProfileResponse{
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		Mobile:         u.GetMobile(),
		EmployeeNumber: u.EmployeeNumber,
		PrivateEmail:   u.GetPrivateEmail(),
		Position:       u.Position,
		Gender:         u.Gender,
		Avatar:         u.Avatar,
		VisibleFields:  account.VisibleFields,
		Depts:          make([]DeptInfo, 0, len(depts)),
	}

	for _, d := range depts {
		resp.Depts = append(resp.Depts, DeptInfo{UID: d.UID, Name: d.Name})
	}

	custom, err := customfield.Render(ctx, s.deps.DB, u.ID)
	if err != nil {
		return nil, err
	}

	if len(custom.Data) > 0 {
		resp.CustomUser = custom
	}

	return resp, nil
}
