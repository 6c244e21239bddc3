package enums

// VoucherStatus tracks a QR voucher from issuance to redemption.
type VoucherStatus string

const (
	VoucherStatusIssued   VoucherStatus = "issued"
	VoucherStatusRedeemed VoucherStatus = "redeemed"
	VoucherStatusExpired  VoucherStatus = "expired"
)

var validVoucherStatuses = []VoucherStatus{
	VoucherStatusIssued,
	VoucherStatusRedeemed,
	VoucherStatusExpired,
}

// IsValid reports whether the value matches the canonical voucher status enum.
func (v VoucherStatus) IsValid() bool {
	for _, candidate := range validVoucherStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}
