package sitedata

import "securecam-site/models"

// Defaults returns the compiled-in document used on first start
func Defaults() models.SiteData {
	return models.SiteData{
		SchemaVersion: models.CurrentSchemaVersion,
		Branding: models.Branding{
			SiteName:      "SecureCam",
			LogoURL:       "/images/logo.png",
			PrimaryColor:  "#0f4c81",
			SiteNameColor: "#ffffff",
			FooterText:    "SecureCam - Seguridad electrónica",
			FooterSubText: "Venta e instalación de cámaras de seguridad",
		},
		Home: models.HomeContent{
			Hero: models.Hero{
				Title:    "Protegemos lo que más importa",
				Subtitle: "Cámaras, grabadores y redes para hogares y empresas",
				ImageURL: "/images/hero.jpg",
				CTAText:  "Arma tu proyecto",
				CTALink:  "/proyecto",
			},
			Features: []models.Feature{
				{Icon: "camera", Title: "Equipos certificados", Description: "Trabajamos con marcas reconocidas y garantía local."},
				{Icon: "tools", Title: "Instalación profesional", Description: "Técnicos con experiencia en cableado y redes."},
				{Icon: "support", Title: "Soporte", Description: "Acompañamiento después de la instalación."},
			},
		},
		About: models.AboutContent{
			Title:  "Quiénes somos",
			Body:   "Somos un equipo dedicado a la seguridad electrónica.",
			Values: []string{"Confianza", "Calidad", "Cumplimiento"},
		},
		Contact: models.ContactContent{
			Title: "Contáctanos",
			Hours: "Lunes a viernes, 8:00 a 18:00",
		},
		Equipment: models.EquipmentContent{
			Title:    "Equipos",
			Subtitle: "Catálogo de productos",
		},
		Projects: models.ProjectsContent{
			Title:    "Proyectos",
			Subtitle: "Algunas de nuestras instalaciones",
			Items:    []models.Project{},
		},
		Catalog: models.Catalog{
			Categories: []models.Category{
				{ID: "cameras", Name: "Cámaras", Subcategories: []models.Subcategory{
					{ID: "ip", Name: "IP"},
					{ID: "analog", Name: "Análogas"},
				}},
				{ID: "recorders", Name: "Grabadores", Subcategories: []models.Subcategory{}},
				{ID: "network", Name: "Redes y energía", Subcategories: []models.Subcategory{}},
			},
			Products: []models.Product{
				{
					ID: "cam-ip-4mp", Name: "Cámara IP domo 4MP", Brand: "Hikvision", Model: "DS-2CD1143G0-I",
					CategoryID: "cameras", SubcategoryID: "ip", PriceNet: 185000,
					Features: []string{"4MP", "IR 30m", "PoE"}, Tags: []string{"camera", "ip"}, Active: true,
				},
				{
					ID: "cam-analog-2mp", Name: "Cámara análoga bala 2MP", Brand: "Hikvision", Model: "DS-2CE16D0T-IRF",
					CategoryID: "cameras", SubcategoryID: "analog", PriceNet: 89000,
					Features: []string{"1080p", "IR 20m"}, Tags: []string{"camera", "analog"}, Active: true,
				},
				{
					ID: "nvr-8", Name: "NVR 8 canales", Brand: "Hikvision", Model: "DS-7608NI-Q1",
					CategoryID: "recorders", PriceNet: 420000,
					Features: []string{"H.265+"}, Tags: []string{"recorder_nvr", "channels_8"}, Active: true,
				},
				{
					ID: "dvr-8", Name: "DVR 8 canales", Brand: "Hikvision", Model: "DS-7208HGHI-M1",
					CategoryID: "recorders", PriceNet: 310000,
					Features: []string{"Turbo HD"}, Tags: []string{"recorder_dvr", "channels_8"}, Active: true,
				},
				{
					ID: "switch-poe-8", Name: "Switch PoE 8 puertos", Brand: "TP-Link", Model: "TL-SF1008P",
					CategoryID: "network", PriceNet: 260000,
					Tags: []string{"switch_poe", "ports_8"}, Active: true,
				},
				{
					ID: "psu-12v-5a", Name: "Fuente 12V 5A", Brand: "Genérica", Model: "12V5A",
					CategoryID: "network", PriceNet: 35000,
					Tags: []string{"power_supply"}, Active: true,
				},
			},
		},
		GitHubSettings: models.GitHubSettings{Branch: "main"},
		WhatsAppConfig: models.WhatsAppConfig{
			DefaultMessage: "Hola, quiero información sobre cámaras de seguridad",
		},
		AISettings: models.AISettings{
			AssistantName: "Asistente SecureCam",
			SystemPrompt:  "Eres un asesor de seguridad electrónica. Ayuda al cliente a armar su proyecto de cámaras usando solo productos del catálogo.",
			WelcomeText:   "¡Hola! Cuéntame qué lugar quieres proteger.",
		},
	}
}
