package models

import (
	"errors"
	"fmt"
)

// Usage surcharge rates, in cents
const (
	DataRatePerGB            Money = 50
	VoIPOverageRatePerMinute Money = 10
)

// PlanType identifies a TelecomService variant
type PlanType string

const (
	PlanTypeBasic PlanType = "basic"
	PlanTypeData  PlanType = "data"
	PlanTypeVoIP  PlanType = "voip"
)

var ErrUnknownPlanType = errors.New("unknown plan type")

// Usage is the billing-period usage passed to every plan. Plans that do not
// bill usage ignore it.
type Usage struct {
	MinutesUsed int `json:"minutes_used"`
}

// TelecomService is a priced service plan
type TelecomService interface {
	ServiceID() string
	BaseCost() Money
	// MonthlyCharge is BaseCost plus a non-negative variant surcharge
	MonthlyCharge(u Usage) Money
	String() string
}

var (
	_ TelecomService = BasicService{}
	_ TelecomService = MobileDataPlan{}
	_ TelecomService = VoIPService{}
)

// BasicService is a flat-rate plan
type BasicService struct {
	serviceID string
	baseCost  Money
}

func NewBasicService(serviceID string, baseCost Money) BasicService {
	return BasicService{serviceID: serviceID, baseCost: baseCost}
}

func (s BasicService) ServiceID() string { return s.serviceID }
func (s BasicService) BaseCost() Money   { return s.baseCost }

func (s BasicService) MonthlyCharge(Usage) Money {
	return s.baseCost
}

func (s BasicService) String() string {
	return fmt.Sprintf("Service %s ($%s/month)", s.serviceID, s.baseCost)
}

// MobileDataPlan adds a per-GB charge on its data allowance
type MobileDataPlan struct {
	BasicService
	dataLimitGB int
}

func NewMobileDataPlan(serviceID string, baseCost Money, dataLimitGB int) MobileDataPlan {
	return MobileDataPlan{
		BasicService: NewBasicService(serviceID, baseCost),
		dataLimitGB:  dataLimitGB,
	}
}

func (p MobileDataPlan) DataLimitGB() int { return p.dataLimitGB }

func (p MobileDataPlan) MonthlyCharge(Usage) Money {
	return p.baseCost + Money(p.dataLimitGB)*DataRatePerGB
}

func (p MobileDataPlan) String() string {
	return fmt.Sprintf("%s - %dGB data", p.BasicService.String(), p.dataLimitGB)
}

// VoIPService bills minutes beyond the included allowance
type VoIPService struct {
	BasicService
	includedMinutes int
}

func NewVoIPService(serviceID string, baseCost Money, includedMinutes int) VoIPService {
	return VoIPService{
		BasicService:    NewBasicService(serviceID, baseCost),
		includedMinutes: includedMinutes,
	}
}

func (v VoIPService) IncludedMinutes() int { return v.includedMinutes }

func (v VoIPService) MonthlyCharge(u Usage) Money {
	extra := max(0, u.MinutesUsed-v.includedMinutes)
	return v.baseCost + Money(extra)*VoIPOverageRatePerMinute
}

// PlanSpec describes a plan to build with NewTelecomService
type PlanSpec struct {
	Type            PlanType `json:"type"`
	ServiceID       string   `json:"service_id"`
	BaseCost        Money    `json:"base_cost"`
	DataLimitGB     int      `json:"data_limit_gb,omitempty"`
	IncludedMinutes int      `json:"included_minutes,omitempty"`
}

// NewTelecomService builds the variant named by spec.Type
func NewTelecomService(spec PlanSpec) (TelecomService, error) {
	switch spec.Type {
	case PlanTypeBasic, "":
		return NewBasicService(spec.ServiceID, spec.BaseCost), nil
	case PlanTypeData:
		return NewMobileDataPlan(spec.ServiceID, spec.BaseCost, spec.DataLimitGB), nil
	case PlanTypeVoIP:
		return NewVoIPService(spec.ServiceID, spec.BaseCost, spec.IncludedMinutes), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlanType, spec.Type)
	}
}
