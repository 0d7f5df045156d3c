package utils

// MaskPhone redacts a contact phone for non-privileged viewers. Standard
// numbers keep a 3-digit prefix and 4-digit suffix around the mask; numbers
// too short for that pattern are fully replaced so nothing leaks.
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}
	if len(phone) < 7 {
		return "****"
	}
	return phone[:3] + "****" + phone[len(phone)-4:]
}
