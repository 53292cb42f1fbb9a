package flow

import (
	"fmt"
	"strings"
)

func welcomeMessage(lang Language, name string) string {
	greeting := "Karibu! 👋"
	if name = strings.TrimSpace(name); name != "" {
		greeting = fmt.Sprintf("Karibu %s! 👋", name)
	}
	return greeting + "\n" + T(lang,
		"Huu ni Msaidizi wa Huduma za Wananchi wa Halmashauri ya Wilaya.",
		"This is the District Citizen Services Assistant.") +
		"\n\n" + mainMenuBody(lang) +
		"\n" + T(lang, "(Jibu # kuanza upya)", "(Reply # to reset / start over)")
}

func mainMenuBody(lang Language) string {
	return T(lang,
		`1️⃣ Angalia hali ya maombi
2️⃣ Wasilisha malalamiko
3️⃣ Taarifa za idara
4️⃣ Taarifa za wilaya
5️⃣ Maswali ya mara kwa mara
6️⃣ Saa za kazi na mawasiliano
7️⃣ Uliza swali
8️⃣ Fuatilia tiketi zako

Tafadhali jibu kwa nambari kuendelea.`,
		`1️⃣ Check application status
2️⃣ Submit a complaint
3️⃣ Department information
4️⃣ District information
5️⃣ Frequently asked questions
6️⃣ Office hours & contacts
7️⃣ Ask a question
8️⃣ Track your tickets

Please reply with a number to continue.`)
}

func mainMenuMessage(lang Language) string {
	return mainMenuBody(lang)
}

func invalidOption(lang Language) string {
	return T(lang,
		"Samahani, sikuelewa hilo.\nTafadhali jibu kwa nambari sahihi ya chaguo.",
		"Sorry, I didn't understand that.\nPlease reply with a valid option number.")
}

func checkDeptMenu(lang Language) string {
	return T(lang, "Tafadhali chagua idara:", "Please select the department:") +
		"\n" + deptMenu(true)
}

func submitDeptMenu(lang Language) string {
	return T(lang,
		"Tafadhali chagua idara inayohusiana na tatizo lako:",
		"Please select the department your issue relates to:") +
		"\n" + deptMenu(false)
}

func deptInfoMenu(lang Language) string {
	return T(lang,
		"Chagua idara kupata taarifa:",
		"Select a department to get information:") +
		"\n" + deptMenu(false)
}

func idTypeMenu(lang Language, dept Department) string {
	return fmt.Sprintf("%s %s %s\n\n%s\n%s",
		T(lang, "Umechagua", "You selected"), dept.Label, dept.Icon,
		T(lang,
			"Ungependa kuangalia hali kwa njia gani?",
			"How would you like to check your status?"),
		T(lang,
			"1️⃣ Namba ya Kumbukumbu ya Maombi\n2️⃣ Kitambulisho cha Taifa (NIDA)\n3️⃣ Namba ya Simu",
			"1️⃣ Application Reference Number\n2️⃣ National ID (NIDA)\n3️⃣ Phone Number"))
}

func idValuePrompt(lang Language, idType string) string {
	switch idType {
	case "2":
		return T(lang,
			"Tafadhali ingiza Kitambulisho chako cha Taifa (NIDA):",
			"Please enter your National ID (NIDA):")
	case "3":
		return T(lang,
			"Tafadhali ingiza Namba yako ya Simu:",
			"Please enter your Phone Number:")
	default:
		return T(lang,
			"Tafadhali ingiza Namba yako ya Kumbukumbu ya Maombi:",
			"Please enter your Application Reference Number:")
	}
}

func inReviewResult(lang Language, dept Department) string {
	return fmt.Sprintf("%s – %s\n\n%s\n\n%s",
		dept.Label,
		T(lang, "Hali ya Maombi", "Application Status"),
		T(lang,
			"Hali: INAPITIWA\nHatua: Uhakiki wa Upimaji\nSasisho la Mwisho: 12 Jan 2026",
			"Application Status: IN REVIEW\nStage: Survey Verification\nLast Update: 12 Jan 2026"),
		checkResultMenu(lang))
}

func noRecordFound(lang Language) string {
	return T(lang,
		"Hakuna kumbukumbu iliyopatikana kwa taarifa ulizotoa.",
		"No record found with the provided details.") +
		"\n\n" + checkResultMenu(lang)
}

func checkResultMenu(lang Language) string {
	return T(lang,
		"1️⃣ Angalia maombi mengine\n2️⃣ Wasiliana na afisa\n3️⃣ Menyu kuu",
		"1️⃣ Check another application\n2️⃣ Contact officer\n3️⃣ Main menu")
}

func contactSupport(lang Language, supportPhone string) string {
	msg := T(lang,
		"Unaweza kuwasiliana na afisa kupitia ofisi ya wilaya.",
		"You can contact support at the district office.")
	if supportPhone != "" {
		msg += "\n" + T(lang, "Simu: ", "Phone: ") + supportPhone
	}
	return msg
}

func submitPrompt(lang Language) string {
	return T(lang,
		"Tafadhali andika malalamiko yako hapa chini.",
		"Please type your complaint below.")
}

func submitTooShort(lang Language) string {
	return T(lang,
		"Tafadhali andika malalamiko yako (angalau maneno machache).",
		"Please type your complaint (at least a few words).")
}

func submitConfirmed(lang Language, ticketID string) string {
	return T(lang,
		"Ujumbe wako umepokelewa.\nKitambulisho cha Tiketi: ",
		"Your message has been received.\nTicket ID: ") + ticketID
}

func menuButton(lang Language) Button {
	return Button{ID: "menu", Title: T(lang, "Menyu kuu", "Main menu")}
}

func trackButton(lang Language) Button {
	return Button{ID: "track", Title: T(lang, "Fuatilia tiketi", "Track ticket")}
}

func menuReminder(lang Language) string {
	return T(lang, "1️⃣ Menyu kuu", "1️⃣ Main menu")
}

func questionPrompt(lang Language) string {
	return T(lang,
		"Tafadhali andika swali lako hapa chini.",
		"Please type your question below.")
}

func questionTooShort(lang Language) string {
	return T(lang,
		"Tafadhali andika swali lako.",
		"Please type your question.")
}

func questionConfirmed(lang Language, ticketID string) string {
	return T(lang,
		"Swali lako limepokelewa.\nKitambulisho: ",
		"Your question has been received.\nTicket ID: ") + ticketID
}

func trackChoicePrompt(lang Language) string {
	return T(lang,
		"Ungependa kufuatilia nini?",
		"What would you like to track?")
}

func trackListHeader(lang Language, kind TicketKind) string {
	if kind == KindQuestion {
		return T(lang, "Maswali yako:", "Your questions:")
	}
	return T(lang, "Malalamiko yako:", "Your complaints:")
}

func noRecentTicket(lang Language) string {
	return T(lang,
		"Hakuna tiketi ya hivi karibuni kwenye mazungumzo haya.",
		"No recent ticket in this conversation.") +
		"\n\n" + menuReminder(lang)
}

// deptInfoTexts holds the static department service descriptions.
var deptInfoTexts = map[string]struct{ sw, en string }{
	"ardhi": {
		sw: "Huduma za Idara ya Ardhi:\n- Uhakiki wa umiliki wa ardhi\n- Ugawaji wa viwanja\n- Usajili wa hati miliki",
		en: "Ardhi Department Services:\n- Land ownership verification\n- Plot allocation\n- Title deed processing",
	},
	"electricity": {
		sw: "Huduma za Idara ya Umeme:\n- Maombi ya kuunganishiwa umeme\n- Usomaji wa mita na bili\n- Kuripoti hitilafu",
		en: "Electricity Department Services:\n- New connection requests\n- Meter reading and billing\n- Fault reporting",
	},
	"health": {
		sw: "Huduma za Idara ya Afya:\n- Vyeti vya afya\n- Rufaa za kliniki\n- Taarifa za afya ya jamii",
		en: "Health Department Services:\n- Health certificates\n- Clinic referrals\n- Public health information",
	},
	"maji": {
		sw: "Huduma za Idara ya Maji:\n- Maombi ya kuunganishiwa maji\n- Bili na malipo\n- Matatizo ya usambazaji",
		en: "Maji (Water) Department Services:\n- Water connection requests\n- Billing and payments\n- Supply issues",
	},
	"business": {
		sw: "Huduma za Idara ya Biashara:\n- Usajili wa biashara\n- Leseni za biashara\n- Taarifa za masoko",
		en: "Business & Trade Department Services:\n- Business registration\n- Trade licenses\n- Market information",
	},
}

func deptInfoText(lang Language, key string) string {
	info, ok := deptInfoTexts[key]
	if !ok {
		return T(lang,
			"Kwa huduma nyingine, tafadhali tembelea ofisi ya wilaya au wasiliana na mapokezi.",
			"For other services, please visit the district office or contact the main reception.")
	}
	return T(lang, info.sw, info.en) + "\n\n" + officeHoursLine(lang)
}

func officeHoursLine(lang Language) string {
	return T(lang,
		"Saa za Kazi:\nJumatatu hadi Ijumaa\n8:00 asubuhi – 3:30 mchana",
		"Office Hours:\nMonday to Friday\n8:00 AM – 3:30 PM")
}

func districtInfo(lang Language) string {
	return T(lang,
		"Halmashauri ya Wilaya inatoa huduma za ardhi, afya, maji, umeme na biashara kwa wananchi wote. Makao makuu yapo mjini, karibu na ofisi za mkuu wa wilaya.",
		"The District Council provides land, health, water, electricity and trade services to all residents. The headquarters is in town, next to the district commissioner's offices.")
}

func faqInfo(lang Language) string {
	return T(lang,
		`Maswali ya mara kwa mara:

Je, nitapataje hati ya kiwanja? – Wasilisha maombi kwenye Idara ya Ardhi ukiwa na kitambulisho chako.
Je, bili ya maji hulipwaje? – Malipo hufanyika kwa njia ya mtandao au ofisi za Idara ya Maji.
Je, leseni ya biashara huchukua muda gani? – Kwa kawaida siku 7 za kazi.`,
		`Frequently asked questions:

How do I get a plot title deed? – Submit an application to the Land Department with your ID.
How do I pay a water bill? – Payments are accepted online or at the Water Department offices.
How long does a trade license take? – Typically 7 working days.`)
}

func officeHoursInfo(lang Language, supportPhone string) string {
	msg := officeHoursLine(lang)
	if supportPhone != "" {
		msg += "\n" + T(lang, "Simu ya msaada: ", "Support phone: ") + supportPhone
	}
	return msg
}
