package core

// Lightweight number formatting for log messages. These avoid pulling
// the fmt package into the firmware image on MCU targets.

// itoa converts an integer to a string without using fmt
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}
	if negative {
		digits++
	}

	buf := make([]byte, digits)
	pos := digits - 1
	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}
	if negative {
		buf[0] = '-'
	}

	return string(buf)
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	buf := make([]byte, digits)
	pos := digits - 1
	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	return string(buf)
}

// ftoa1 formats a float with one decimal place, enough for duty and
// RPM values in log output.
func ftoa1(f float64) string {
	negative := f < 0
	if negative {
		f = -f
	}
	whole := int(f)
	tenth := int((f-float64(whole))*10 + 0.5)
	if tenth >= 10 {
		whole++
		tenth -= 10
	}
	s := itoa(whole) + "." + itoa(tenth)
	if negative {
		return "-" + s
	}
	return s
}
