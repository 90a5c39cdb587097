package notify

import "fmt"

// Subject builds the mail subject for a template kind. Texts are the Swedish
// production strings; the local language is primary across all channels.
func Subject(kind TemplateKind, tctx Context) string {
	switch kind {
	case TemplateJobCreated:
		return fmt.Sprintf("Vi har mottagit er tolkbokning. Bokningsnr: #%s", tctx.JobID)
	case TemplateJobAccepted, TemplateChangedTranslatorNew:
		return fmt.Sprintf("Bekräftelse - tolk har accepterat er bokning (bokning # %s)", tctx.JobID)
	case TemplateJobReopened:
		return fmt.Sprintf("Vi har nu återöppnat er bokning av %stolk för bokning #%s", tctx.LanguageName, tctx.JobID)
	case TemplateCancelledCustomer, TemplateCancelledTranslator:
		return fmt.Sprintf("Avbokning av bokningsnr: #%s", tctx.JobID)
	case TemplateSessionEnded:
		return fmt.Sprintf("Information om avslutad tolkning för bokningsnummer # %s", tctx.JobID)
	case TemplateChangedTranslatorCustomer, TemplateChangedTranslatorOld,
		TemplateChangedDate, TemplateChangedLanguage:
		return fmt.Sprintf("Meddelande om ändring av tolkbokning för uppdrag # %s", tctx.JobID)
	}
	return fmt.Sprintf("Tolkbokning #%s", tctx.JobID)
}

// PushContents builds the localized push body for a template kind.
func PushContents(kind TemplateKind, tctx Context) map[string]string {
	var text string
	switch kind {
	case TemplateNewSuitableJob:
		if tctx.Immediate {
			text = fmt.Sprintf("Ny akutbokning för %s tolk %dmin", tctx.LanguageName, tctx.Duration)
		} else {
			text = fmt.Sprintf("Ny bokning för %s tolk %dmin %s", tctx.LanguageName, tctx.Duration, tctx.Due)
		}
	case TemplateJobAcceptedPush:
		text = fmt.Sprintf("Din bokning för %s tolk, %d min, %s har accepterats av en tolk. Vänligen öppna appen för att se detaljer om tolken.",
			tctx.LanguageName, tctx.Duration, tctx.Due)
	case TemplateCancelledCustomer:
		// customer withdrew; the translator is told
		text = fmt.Sprintf("Kunden har avbokat bokningen för %s tolk, %d min, %s. Var god och kolla dina tidigare bokningar för detaljer.",
			tctx.LanguageName, tctx.Duration, tctx.Due)
	case TemplateCancelledTranslator:
		// translator backed out; the customer is told
		text = fmt.Sprintf("Er %s tolk, %d min %s, har avbokat tolkningen. Vi letar nu efter en ny tolk som kan ersätta denne. Tack.",
			tctx.LanguageName, tctx.Duration, tctx.Due)
	case TemplateJobExpired:
		text = fmt.Sprintf("Tyvärr har ingen tolk accepterat er bokning: (%s, %d min, %s). Vänligen pröva boka om tiden.",
			tctx.LanguageName, tctx.Duration, tctx.Due)
	case TemplateSessionReminder:
		place := "telefon"
		if tctx.Physical {
			place = "på plats i " + tctx.Town
		}
		text = fmt.Sprintf("Detta är en påminnelse om att du har en %s tolkning (%s) kl %s på %s som vara i %d min. Lycka till och kom ihåg att ge feedback efter utförd tolkning!",
			tctx.LanguageName, place, tctx.DueTime, tctx.DueDate, tctx.Duration)
	default:
		text = Subject(kind, tctx)
	}
	return map[string]string{"en": text}
}

// SMSBody builds the suitable-job SMS. On-site bookings without a phone
// option get the physical wording with the town; everything else gets the
// phone wording.
func SMSBody(tctx Context, durationText string) string {
	if tctx.Physical && !tctx.Phone {
		return fmt.Sprintf("Ny platstolkning %s kl %s i %s, %s. Boknings-id: %s. Svara JA om du är intresserad!",
			tctx.DueDate, tctx.DueTime, tctx.Town, durationText, tctx.JobID)
	}
	return fmt.Sprintf("Ny telefontolkning %s kl %s, %s. Boknings-id: %s. Svara JA om du är intresserad!",
		tctx.DueDate, tctx.DueTime, durationText, tctx.JobID)
}

// EmailBody builds the plain-text mail body for a template kind.
func EmailBody(kind TemplateKind, toName string, tctx Context) string {
	greeting := "Hej,"
	if toName != "" {
		greeting = fmt.Sprintf("Hej %s,", toName)
	}

	details := bookingDetails(tctx)

	var text string
	switch kind {
	case TemplateJobCreated:
		text = fmt.Sprintf("Vi har mottagit er bokning av %stolk.\n\n%s\n\nVi återkommer med en bekräftelse så snart en tolk har accepterat bokningen.",
			tctx.LanguageName, details)
	case TemplateJobAccepted, TemplateChangedTranslatorNew:
		text = fmt.Sprintf("En tolk har nu accepterat er bokning av %stolk.\n\n%s",
			tctx.LanguageName, details)
	case TemplateJobReopened:
		text = fmt.Sprintf("Er bokning av %stolk har återöppnats och vi söker nu en ny tolk.\n\n%s",
			tctx.LanguageName, details)
	case TemplateChangedTranslatorCustomer:
		text = fmt.Sprintf("Tolken för er bokning har bytts ut. Den nya tolken har fått alla uppgifter om uppdraget.\n\n%s", details)
	case TemplateChangedTranslatorOld:
		text = fmt.Sprintf("Du har blivit avbokad från uppdrag # %s. Uppdraget har tilldelats en annan tolk.", tctx.JobID)
	case TemplateChangedDate:
		text = fmt.Sprintf("Tiden för bokning # %s har ändrats från %s.\n\n%s", tctx.JobID, tctx.OldTime, details)
	case TemplateChangedLanguage:
		text = fmt.Sprintf("Språket för bokning # %s har ändrats från %s till %s.\n\n%s",
			tctx.JobID, tctx.OldLanguage, tctx.LanguageName, details)
	case TemplateCancelledCustomer:
		text = fmt.Sprintf("Bokning # %s har avbokats av kunden.\n\n%s", tctx.JobID, details)
	case TemplateCancelledTranslator:
		text = fmt.Sprintf("Tolken har avbokat uppdraget för er bokning # %s. Vi söker nu en ny tolk.\n\n%s", tctx.JobID, details)
	case TemplateSessionEnded:
		text = fmt.Sprintf("Tolkningen för bokning # %s har nu avslutats. Sessionstiden blev %s och ligger till grund för %s.",
			tctx.JobID, tctx.SessionTime, tctx.ForText)
	default:
		text = Subject(kind, tctx)
	}

	return fmt.Sprintf("%s\n\n%s\n\nMed vänliga hälsningar,\nInterpretly\n", greeting, text)
}

func bookingDetails(tctx Context) string {
	kind := "Telefontolkning"
	if tctx.Physical {
		kind = "Platstolkning i " + tctx.Town
	}
	return fmt.Sprintf("Bokningsnr: # %s\nSpråk: %s\nTid: %s\nLängd: %d min\nTyp: %s",
		tctx.JobID, tctx.LanguageName, tctx.Due, tctx.Duration, kind)
}

// sounds returns the android/ios sound pair for a push. Suitable-job pushes
// use distinct booking sounds, urgent for immediate jobs.
func sounds(kind TemplateKind, immediate bool) (android, ios string) {
	if kind != TemplateNewSuitableJob {
		return "default", "default"
	}
	if immediate {
		return "emergency_booking", "emergency_booking.mp3"
	}
	return "normal_booking", "normal_booking.mp3"
}
