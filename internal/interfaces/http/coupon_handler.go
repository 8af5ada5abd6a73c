package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cupones-api/internal/application/dto"
	"github.com/jhoicas/cupones-api/internal/application/usecase"
)

// CouponHandler maneja las peticiones HTTP para el recurso Coupon.
type CouponHandler struct {
	uc *usecase.CouponUseCase
}

// NewCouponHandler construye el handler inyectando el caso de uso.
func NewCouponHandler(uc *usecase.CouponUseCase) *CouponHandler {
	return &CouponHandler{uc: uc}
}

// Create godoc
// @Summary      Publicar cupón para la empresa del usuario
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateCouponRequest  true  "Datos del cupón"
// @Success      201   {object}  dto.CouponResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/v1/coupons [post]
func (h *CouponHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCouponRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar cupones activos
// @Tags         coupons
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.CouponListResponse
// @Router       /api/v1/coupons [get]
func (h *CouponHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListActive(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Expiring godoc
// @Summary      Cupones próximos a vencer
// @Tags         coupons
// @Produce      json
// @Param        days  query  int  false  "Ventana en días (1-365)"  default(7)
// @Success      200   {object}  dto.CouponListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/v1/coupons/expiring [get]
func (h *CouponHandler) Expiring(c *fiber.Ctx) error {
	out, err := h.uc.ListExpiring(c.UserContext(), c.QueryInt("days", 0))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ByCompany godoc
// @Summary      Cupones activos de una empresa
// @Tags         coupons
// @Produce      json
// @Param        companyId  path   string  true   "ID de la empresa"
// @Param        limit      query  int     false  "Límite"   default(20)
// @Param        offset     query  int     false  "Offset"   default(0)
// @Success      200        {object}  dto.CouponListResponse
// @Router       /api/v1/coupons/company/{companyId} [get]
func (h *CouponHandler) ByCompany(c *fiber.Ctx) error {
	out, err := h.uc.ListByCompany(c.UserContext(), c.Params("companyId"), pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener cupón por ID
// @Tags         coupons
// @Produce      json
// @Param        id   path  string  true  "ID del cupón"
// @Success      200  {object}  dto.CouponResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/coupons/{id} [get]
func (h *CouponHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Voucher godoc
// @Summary      Comprobante PDF del cupón
// @Tags         coupons
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del cupón"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/coupons/{id}/voucher [get]
func (h *CouponHandler) Voucher(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.Voucher(c.UserContext(), id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="cupon-`+id+`.pdf"`)
	return c.Send(pdf)
}

// Update godoc
// @Summary      Actualizar cupón (admin o usuarios de la empresa dueña)
// @Tags         coupons
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                   true  "ID del cupón"
// @Param        body  body  dto.UpdateCouponRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.CouponResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/v1/coupons/{id} [put]
func (h *CouponHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateCouponRequest
	if err := c.BodyParser(&in); err != nil {
		return errInvalidBody
	}
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Desactivar cupón (admin o usuarios de la empresa dueña)
// @Tags         coupons
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del cupón"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/v1/coupons/{id} [delete]
func (h *CouponHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "cupón desactivado"})
}
