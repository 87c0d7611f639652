package store

import "github.com/legisdesk/bill-registry/internal/models"

// Static returns the compiled-in record set.
func Static() *Store {
	return New(seedBills(), seedNews())
}

// FallbackBills is served when a bill source cannot be reached.
func FallbackBills() []models.Bill {
	return []models.Bill{
		{
			ID:             "105",
			Title:          "The Digital Personal Data Protection Bill, 2023",
			Ministry:       "Ministry of Electronics and IT",
			Status:         models.StatusAssented,
			DateIntroduced: "2023-08-03",
		},
		{
			ID:             "104",
			Title:          "The Waqf (Amendment) Bill, 2024",
			Ministry:       "Ministry of Minority Affairs",
			Status:         models.StatusPending,
			DateIntroduced: "2024-08-08",
		},
		{
			ID:             "103",
			Title:          "The Post Office Bill, 2023",
			Ministry:       "Ministry of Communications",
			Status:         models.StatusPassedLowerHouse,
			DateIntroduced: "2023-08-10",
		},
	}
}

func seedBills() []models.Bill {
	return []models.Bill{
		{
			ID:                   "108",
			Title:                "The Disaster Management (Amendment) Bill, 2024",
			Status:               models.StatusPending,
			DateIntroduced:       "2024-08-15",
			Ministry:             "Home Affairs",
			Chamber:              models.ChamberLowerHouse,
			Summary:              "Aims to strengthen the disaster management framework and define the roles of various authorities.",
			Priority:             models.PriorityHigh,
			State:                "Delhi",
			GazetteNumber:        "GSR-2024-08-15-H",
			CommitteeStatus:      "Referred to Standing Committee on Home Affairs",
			FinancialImplication: "Estimated ₹1,200 Crores for infrastructure upgrades.",
			KeyStakeholders:      []string{"NDRF", "SDMA", "State Governments"},
			LegislativeHistory: []models.HistoryEntry{
				{Date: "2024-08-15", Action: "Introduced in Lok Sabha"},
				{Date: "2024-08-20", Action: "Discussion on preliminary clauses"},
			},
		},
		{
			ID:                   "107",
			Title:                "The Banking Laws (Amendment) Bill, 2024",
			Status:               models.StatusIntroduced,
			DateIntroduced:       "2024-08-12",
			Ministry:             "Finance",
			Chamber:              models.ChamberLowerHouse,
			Summary:              "Proposes amendments to allow the increase in the number of nominees for bank account holders.",
			Priority:             models.PriorityMedium,
			State:                "Maharashtra",
			GazetteNumber:        "FIN-REG-2024-B",
			CommitteeStatus:      "Under preliminary review",
			FinancialImplication: "Minimal administrative costs.",
			KeyStakeholders:      []string{"RBI", "Public Sector Banks", "Account Holders"},
			LegislativeHistory: []models.HistoryEntry{
				{Date: "2024-08-12", Action: "Introduced in Lok Sabha"},
			},
		},
		{
			ID:                   "106",
			Title:                "The Oilfields (Regulation and Development) Amendment Bill, 2024",
			Status:               models.StatusPending,
			DateIntroduced:       "2024-08-10",
			Ministry:             "Petroleum and Natural Gas",
			Chamber:              models.ChamberUpperHouse,
			Summary:              "Aims to modernize the regulation of oilfields and promote sustainable development in the energy sector.",
			Priority:             models.PriorityHigh,
			State:                "Assam",
			GazetteNumber:        "PNG-RD-2024-03",
			CommitteeStatus:      "Pending review in Upper House",
			FinancialImplication: "Regulatory oversight increase of ₹45 Crores.",
			KeyStakeholders:      []string{"ONGC", "Private Drillers", "Environmental Ministry"},
			LegislativeHistory: []models.HistoryEntry{
				{Date: "2024-08-10", Action: "Introduced in Rajya Sabha"},
			},
		},
		{
			ID:                   "105",
			Title:                "The Waqf (Amendment) Bill, 2024",
			Status:               models.StatusPending,
			DateIntroduced:       "2024-08-08",
			Ministry:             "Minority Affairs",
			Chamber:              models.ChamberLowerHouse,
			Summary:              "Proposes to amend the Waqf Act, 1995, to enhance accountability and transparency in Waqf boards.",
			Priority:             models.PriorityHigh,
			State:                "Uttar Pradesh",
			GazetteNumber:        "MIN-WAQF-2024-12",
			CommitteeStatus:      "JPC (Joint Parliamentary Committee) Review",
			FinancialImplication: "Central registry setup cost ₹85 Crores.",
			KeyStakeholders:      []string{"Waqf Boards", "Central Waqf Council", "Religious Institutions"},
			LegislativeHistory: []models.HistoryEntry{
				{Date: "2024-08-08", Action: "Introduced in Lok Sabha"},
				{Date: "2024-08-12", Action: "Referred to JPC"},
			},
		},
		{
			ID:                   "104",
			Title:                "The Bharatiya Nyaya (Second) Sanhita, 2023",
			Status:               models.StatusAssented,
			DateIntroduced:       "2023-12-12",
			Ministry:             "Home Affairs",
			Chamber:              models.ChamberBoth,
			Summary:              "Replaces the Indian Penal Code, 1860, with modern legal provisions.",
			Priority:             models.PriorityHigh,
			State:                "Delhi",
			GazetteNumber:        "LAW-BNS-2023-45",
			CommitteeStatus:      "Passed all reviews",
			FinancialImplication: "Significant judicial training costs.",
			KeyStakeholders:      []string{"Bar Council of India", "State Police Forces", "Judiciary"},
			LegislativeHistory: []models.HistoryEntry{
				{Date: "2023-12-12", Action: "Introduced"},
				{Date: "2023-12-20", Action: "Passed LS"},
				{Date: "2023-12-21", Action: "Passed RS"},
				{Date: "2023-12-25", Action: "Presidential Assent Received"},
			},
		},
	}
}

func seedNews() []models.NewsItem {
	return []models.NewsItem{
		{
			ID:       "n1",
			Title:    "Election Commission Prepares for 2026 Assembly Polls",
			Category: models.CategoryElection,
			Date:     "2024-10-15",
			Content:  "The Election Commission of India has started mapping booths in key states ahead of the scheduled assembly elections in 2026.",
			Source:   "Official Press Bureau",
		},
		{
			ID:       "n2",
			Title:    "New Infrastructure Policy to Focus on Green Corridors",
			Category: models.CategoryPolicy,
			Date:     "2024-10-12",
			Content:  "A high-level cabinet committee has approved the draft for the National Green Corridor Policy, aiming to reduce carbon footprints of major highways.",
			Source:   "Ministry of Road Transport",
		},
		{
			ID:       "n3",
			Title:    "India to Host Global Trade Summit in New Delhi",
			Category: models.CategoryInternational,
			Date:     "2024-10-10",
			Content:  "Representatives from over 40 nations are expected to attend the 2026 Trade Summit hosted at the Bharat Mandapam.",
			Source:   "Ministry of External Affairs",
		},
		{
			ID:       "n4",
			Title:    "Digital Rupee Expansion: Pilot Program Hits 50 Cities",
			Category: models.CategoryPolicy,
			Date:     "2024-10-08",
			Content:  "The RBI announced that the CBDC (Digital Rupee) pilot has successfully expanded to 50 cities across India.",
			Source:   "Reserve Bank of India",
		},
	}
}
