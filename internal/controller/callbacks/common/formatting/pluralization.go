package formatting

// PluralizeLessons возвращает правильное склонение слова "занятие"
func PluralizeLessons(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "занятие"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "занятия"
	}
	return "занятий"
}

// PluralizeBookings возвращает правильное склонение слова "запись"
func PluralizeBookings(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "запись"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "записи"
	}
	return "записей"
}

// PluralizeCredits возвращает правильное склонение слова "кредит"
func PluralizeCredits(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "кредит"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "кредита"
	}
	return "кредитов"
}

// PluralizeRecipients возвращает правильное склонение слова "получатель"
func PluralizeRecipients(count int) string {
	if count%10 == 1 && count%100 != 11 {
		return "получатель"
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return "получателя"
	}
	return "получателей"
}
